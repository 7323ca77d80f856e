package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/log"
)

// ListProjects handles GET /api/projects
func (s *Server) ListProjects(c *gin.Context) {
	projects, err := db.ListProjects()
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		RespondInternalError(c, "failed to list projects")
		return
	}
	RespondList(c, projects)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		RespondValidationError(c, "project name is required")
		return
	}

	project, err := db.CreateProject(req.Name)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create project")
		RespondInternalError(c, "failed to create project")
		return
	}
	RespondCreated(c, project)
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *gin.Context) {
	project, err := db.GetProject(c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("failed to get project")
		RespondInternalError(c, "failed to get project")
		return
	}
	if project == nil {
		RespondNotFound(c, "project not found")
		return
	}
	RespondData(c, project)
}
