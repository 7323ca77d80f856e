package api

import (
	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/notifications"
)

// GetStagingPool handles GET /api/staging
func (s *Server) GetStagingPool(c *gin.Context) {
	pool, err := s.library.FetchPendingPool(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to scan staging pool")
		RespondInternalError(c, "failed to scan staging pool")
		return
	}
	RespondData(c, gin.H{
		"pool": pool,
		"auto": s.importer.AutoEnabled(),
	})
}

// ImportPending handles POST /api/staging/import, a manual single-file
// import. Without a projectId it targets the open session's project.
func (s *Server) ImportPending(c *gin.Context) {
	var req struct {
		Filename  string `json:"filename"`
		ProjectID string `json:"projectId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		RespondBadRequest(c, "filename is required")
		return
	}

	projectID := req.ProjectID
	if projectID == "" {
		projectID = s.store.ProjectID()
	}
	if projectID == "" {
		RespondConflict(c, "no target project")
		return
	}

	name, err := s.importer.ImportOne(c.Request.Context(), projectID, req.Filename)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	s.notifier.Notify(notifications.EventStagingChanged, nil)
	s.notifier.Notify(notifications.EventSequenceChanged, nil)
	RespondData(c, gin.H{"filename": name})
}

// SetAutoImport handles PUT /api/staging/auto
func (s *Server) SetAutoImport(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if !req.Enabled {
		s.importer.DisableAuto()
		RespondData(c, gin.H{"auto": false})
		return
	}

	if s.importer.Project() == "" {
		RespondConflict(c, "open a session before enabling auto-import")
		return
	}
	if err := s.importer.EnableAuto(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to enable auto-import")
		RespondInternalError(c, "failed to enable auto-import")
		return
	}
	RespondData(c, gin.H{"auto": true})
}
