package api

import (
	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/log"
)

// GetSettings handles GET /api/settings
func (s *Server) GetSettings(c *gin.Context) {
	level, err := db.GetSetting("log_level")
	if err != nil {
		log.Error().Err(err).Msg("failed to get settings")
		RespondInternalError(c, "failed to get settings")
		return
	}
	if level == "" {
		level = "info"
	}
	RespondData(c, gin.H{
		"logLevel":         level,
		"confirmThreshold": s.cfg.ConfirmThreshold,
		"pollSeconds":      int(s.cfg.PollInterval.Seconds()),
	})
}

// UpdateSettings handles PUT /api/settings
func (s *Server) UpdateSettings(c *gin.Context) {
	var req struct {
		LogLevel string `json:"logLevel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	if req.LogLevel != "" {
		if err := db.SetSetting("log_level", req.LogLevel); err != nil {
			log.Error().Err(err).Msg("failed to update settings")
			RespondInternalError(c, "failed to update settings")
			return
		}
		log.SetLevel(req.LogLevel)
		log.Info().Str("level", req.LogLevel).Msg("log level updated")
	}

	s.GetSettings(c)
}
