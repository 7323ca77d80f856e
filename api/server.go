// Package api exposes the session engine, staging importer and project
// library over HTTP.
package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/config"
	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/library"
	"github.com/flowdeck-app/flowdeck/notifications"
	"github.com/flowdeck-app/flowdeck/staging"
	"github.com/flowdeck-app/flowdeck/store"
)

// Server bundles the handler dependencies
type Server struct {
	cfg      *config.Config
	store    *store.Store
	library  *library.Service
	importer *staging.Importer
	notifier *notifications.Service
}

// NewServer creates the API server over the given components
func NewServer(cfg *config.Config, st *store.Store, lib *library.Service, imp *staging.Importer, notifier *notifications.Service) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		library:  lib,
		importer: imp,
		notifier: notifier,
	}
}

// Health handles GET /api/health
func (s *Server) Health(c *gin.Context) {
	version, err := db.GetCurrentVersion()
	if err != nil {
		RespondInternalError(c, "database unavailable")
		return
	}
	RespondData(c, gin.H{
		"status":        "ok",
		"schemaVersion": version,
	})
}

// respondStoreError maps engine sentinel errors onto HTTP responses.
// Unknown errors become a 500 with the raw message withheld from clients.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNoSession):
		RespondConflict(c, "no session is open")
	case errors.Is(err, store.ErrIndexOutOfRange):
		RespondValidationError(c, "index out of range")
	case errors.Is(err, store.ErrInvalidRange):
		RespondValidationError(c, "invalid range")
	case errors.Is(err, store.ErrEmptySelection):
		RespondValidationError(c, "selection is empty")
	case errors.Is(err, store.ErrDuplicateScreen):
		RespondConflict(c, "screen already in sequence")
	case errors.Is(err, store.ErrUnknownScreen):
		RespondNotFound(c, "screen not in sequence")
	case errors.Is(err, store.ErrForkPointNotFound):
		RespondNotFound(c, "fork point not found")
	case errors.Is(err, store.ErrBranchNotFound):
		RespondNotFound(c, "branch not found")
	case errors.Is(err, store.ErrEmptyBranch):
		RespondValidationError(c, "no screens staged for branch")
	case errors.Is(err, store.ErrInvalidBranchRange):
		RespondUnprocessable(c, "branch screens must come after the fork point")
	case errors.Is(err, store.ErrScreenAlreadyBranched):
		RespondConflict(c, "screen already belongs to another branch")
	case errors.Is(err, store.ErrWrongMode):
		RespondUnprocessable(c, "operation not valid in current mode")
	case errors.Is(err, library.ErrProjectNotFound):
		RespondNotFound(c, "project not found")
	case errors.Is(err, library.ErrPendingNotFound):
		RespondNotFound(c, "pending file not found")
	default:
		RespondInternalError(c, "internal error")
	}
}
