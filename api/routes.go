package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")

	api.GET("/health", s.Health)

	// Projects
	api.GET("/projects", s.ListProjects)
	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id", s.GetProject)

	// Session lifecycle and state
	api.GET("/session", s.GetSession)
	api.POST("/session/open", s.OpenSession)
	api.POST("/session/teardown", s.TeardownSession)

	// Sequence
	api.POST("/session/reorder", s.Reorder)
	api.POST("/session/insert", s.InsertScreen)
	api.PUT("/session/cursor", s.SetCursor)
	api.PUT("/session/onboarding", s.SetOnboardingRange)

	// Selection
	api.POST("/session/selection/toggle", s.ToggleSelect)
	api.POST("/session/selection/range", s.SelectRange)
	api.POST("/session/selection/all", s.SelectAll)
	api.DELETE("/session/selection", s.ClearSelection)

	// Delete ledger
	api.POST("/session/delete", s.DeleteSelected)
	api.POST("/session/restore", s.RestoreBatch)

	// Persistence
	api.POST("/session/save-order", s.SaveOrder)
	api.POST("/session/apply-order", s.ApplyOrder)

	// Branch overlay
	api.PUT("/session/mode", s.SetMode)
	api.POST("/session/fork-points/toggle", s.ToggleForkPoint)
	api.POST("/session/merge-points/toggle", s.ToggleMergePoint)
	api.POST("/session/branches/pending/toggle", s.TogglePendingScreen)
	api.POST("/session/branches", s.CreateBranch)
	api.DELETE("/session/branches", s.ClearBranches)
	api.DELETE("/session/branches/:id", s.RemoveBranch)

	// Staging pool
	api.GET("/staging", s.GetStagingPool)
	api.POST("/staging/import", s.ImportPending)
	api.PUT("/staging/auto", s.SetAutoImport)

	// Settings
	api.GET("/settings", s.GetSettings)
	api.PUT("/settings", s.UpdateSettings)

	// Notifications (SSE)
	api.GET("/notifications/stream", s.NotificationStream)

	// Screen file serving
	r.GET("/raw/:project/:filename", s.ServeScreen)
	r.GET("/thumb/:project/:filename", s.ServeThumbnail)
}
