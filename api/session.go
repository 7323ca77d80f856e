package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/notifications"
	"github.com/flowdeck-app/flowdeck/store"
)

// GetSession handles GET /api/session, returning the full session snapshot
func (s *Server) GetSession(c *gin.Context) {
	snap := s.store.Snapshot()
	if snap.ProjectID == "" {
		RespondNotFound(c, "no session is open")
		return
	}
	RespondData(c, snap)
}

// OpenSession handles POST /api/session/open
func (s *Server) OpenSession(c *gin.Context) {
	var req struct {
		ProjectID string `json:"projectId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == "" {
		RespondBadRequest(c, "projectId is required")
		return
	}

	project, err := db.GetProject(req.ProjectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up project")
		RespondInternalError(c, "failed to look up project")
		return
	}
	if project == nil {
		RespondNotFound(c, "project not found")
		return
	}

	if err := s.store.Open(c.Request.Context(), req.ProjectID); err != nil {
		log.Error().Err(err).Str("project", req.ProjectID).Msg("failed to open session")
		RespondInternalError(c, "failed to open session")
		return
	}
	s.importer.SetProject(req.ProjectID)

	s.notifier.Notify(notifications.EventEpochBumped, gin.H{"epoch": s.store.Epoch()})
	log.Info().Str("project", req.ProjectID).Msg("session opened")
	RespondData(c, s.store.Snapshot())
}

// TeardownSession handles POST /api/session/teardown
func (s *Server) TeardownSession(c *gin.Context) {
	s.store.Teardown()
	s.importer.SetProject("")
	RespondNoContent(c)
}

// Reorder handles POST /api/session/reorder
func (s *Server) Reorder(c *gin.Context) {
	var req struct {
		OldIndex int `json:"oldIndex"`
		NewIndex int `json:"newIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if err := s.store.Reorder(req.OldIndex, req.NewIndex); err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventSequenceChanged, nil)
	RespondData(c, s.store.Snapshot())
}

// InsertScreen handles POST /api/session/insert, placing an already
// imported screen at a position in the live sequence. Local-only until the
// next save-order.
func (s *Server) InsertScreen(c *gin.Context) {
	var req struct {
		Filename string `json:"filename"`
		Index    int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		RespondBadRequest(c, "filename is required")
		return
	}

	if err := s.store.InsertAt(store.Screen{Filename: req.Filename}, req.Index); err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventSequenceChanged, nil)
	RespondData(c, s.store.Snapshot())
}

// SetCursor handles PUT /api/session/cursor
func (s *Server) SetCursor(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if err := s.store.SetCursor(req.Index); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"cursor": s.store.Cursor()})
}

// SetOnboardingRange handles PUT /api/session/onboarding
func (s *Server) SetOnboardingRange(c *gin.Context) {
	var req struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	r := store.OnboardingRange{Start: req.Start, End: req.End}
	if err := s.store.SetOnboardingRange(c.Request.Context(), r); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, r)
}

// ToggleSelect handles POST /api/session/selection/toggle
func (s *Server) ToggleSelect(c *gin.Context) {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		RespondBadRequest(c, "filename is required")
		return
	}

	if err := s.store.Toggle(req.Filename); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, s.store.Snapshot())
}

// SelectRange handles POST /api/session/selection/range
func (s *Server) SelectRange(c *gin.Context) {
	var req struct {
		TargetIndex int `json:"targetIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if err := s.store.SelectRange(req.TargetIndex); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, s.store.Snapshot())
}

// SelectAll handles POST /api/session/selection/all
func (s *Server) SelectAll(c *gin.Context) {
	if err := s.store.SelectAll(); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, s.store.Snapshot())
}

// ClearSelection handles DELETE /api/session/selection
func (s *Server) ClearSelection(c *gin.Context) {
	s.store.ClearSelection()
	RespondNoContent(c)
}

// DeleteSelected handles POST /api/session/delete. Deleting more screens
// than the configured threshold requires the confirm flag; the first call
// comes back 409 so the client can prompt.
func (s *Server) DeleteSelected(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	count := len(s.store.Snapshot().Selection)
	if count > s.cfg.ConfirmThreshold && !req.Confirm {
		RespondConfirmRequired(c, fmt.Sprintf("deleting %d screens requires confirm", count))
		return
	}

	batch, err := s.store.DeleteSelected(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	s.notifier.Notify(notifications.EventSequenceChanged, nil)
	s.notifier.Notify(notifications.EventBatchesChanged, gin.H{"batch": batch.Timestamp})
	RespondData(c, batch)
}

// RestoreBatch handles POST /api/session/restore
func (s *Server) RestoreBatch(c *gin.Context) {
	var req struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Timestamp == 0 {
		RespondBadRequest(c, "timestamp is required")
		return
	}

	if err := s.store.RestoreBatch(c.Request.Context(), req.Timestamp); err != nil {
		respondStoreError(c, err)
		return
	}

	s.notifier.Notify(notifications.EventSequenceChanged, nil)
	s.notifier.Notify(notifications.EventBatchesChanged, nil)
	RespondData(c, s.store.Snapshot())
}

// SaveOrder handles POST /api/session/save-order. Metadata-only persistence,
// no file renames.
func (s *Server) SaveOrder(c *gin.Context) {
	if err := s.store.SaveOrder(c.Request.Context()); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"unsaved": s.store.Unsaved()})
}

// ApplyOrder handles POST /api/session/apply-order. Physically renumbers
// files, so the confirm flag is always required.
func (s *Server) ApplyOrder(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if !req.Confirm {
		RespondConfirmRequired(c, "applying the order renames files on disk and requires confirm")
		return
	}

	if err := s.store.ApplyOrder(c.Request.Context()); err != nil {
		respondStoreError(c, err)
		return
	}

	s.library.InvalidateThumbnails(s.store.ProjectID())
	s.notifier.Notify(notifications.EventSequenceChanged, nil)
	s.notifier.Notify(notifications.EventEpochBumped, gin.H{"epoch": s.store.Epoch()})
	RespondData(c, s.store.Snapshot())
}
