package api

import (
	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/notifications"
	"github.com/flowdeck-app/flowdeck/store"
)

// SetMode handles PUT /api/session/mode
func (s *Server) SetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Mode == "" {
		RespondBadRequest(c, "mode is required")
		return
	}

	if err := s.store.SetMode(store.EditMode(req.Mode)); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"mode": s.store.Mode()})
}

// ToggleForkPoint handles POST /api/session/fork-points/toggle
func (s *Server) ToggleForkPoint(c *gin.Context) {
	var req struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if err := s.store.ToggleForkPoint(c.Request.Context(), req.Index, req.Name); err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventOverlayChanged, nil)
	RespondData(c, s.store.Snapshot())
}

// ToggleMergePoint handles POST /api/session/merge-points/toggle
func (s *Server) ToggleMergePoint(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if err := s.store.ToggleMergePoint(c.Request.Context(), req.Index); err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventOverlayChanged, nil)
	RespondData(c, s.store.Snapshot())
}

// TogglePendingScreen handles POST /api/session/branches/pending/toggle
func (s *Server) TogglePendingScreen(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if err := s.store.TogglePendingScreen(req.Index); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, s.store.Snapshot())
}

// CreateBranch handles POST /api/session/branches, committing the staged
// branch-select buffer
func (s *Server) CreateBranch(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Color    string `json:"color"`
		ForkFrom int    `json:"forkFrom"`
		MergeTo  *int   `json:"mergeTo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if req.Name == "" {
		RespondValidationError(c, "branch name is required")
		return
	}

	branch, err := s.store.CreateBranch(c.Request.Context(), req.Name, req.Color, req.ForkFrom, req.MergeTo)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventOverlayChanged, nil)
	RespondCreated(c, branch)
}

// RemoveBranch handles DELETE /api/session/branches/:id
func (s *Server) RemoveBranch(c *gin.Context) {
	if err := s.store.RemoveBranch(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventOverlayChanged, nil)
	RespondNoContent(c)
}

// ClearBranches handles DELETE /api/session/branches, resetting the whole
// overlay
func (s *Server) ClearBranches(c *gin.Context) {
	if err := s.store.ClearAllBranches(c.Request.Context()); err != nil {
		respondStoreError(c, err)
		return
	}
	s.notifier.Notify(notifications.EventOverlayChanged, nil)
	RespondNoContent(c)
}
