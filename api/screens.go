package api

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/utils"
)

// ServeScreen handles GET /raw/:project/:filename
func (s *Server) ServeScreen(c *gin.Context) {
	path, err := s.library.ScreenPath(c.Param("project"), c.Param("filename"))
	if err != nil {
		RespondBadRequest(c, "invalid filename")
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		RespondNotFound(c, "screen not found")
		return
	}

	c.Header("Content-Type", utils.DetectMimeType(path))
	c.Header("Cache-Control", "no-cache")
	c.File(path)
}

// ServeThumbnail handles GET /thumb/:project/:filename?epoch=N.
// The epoch query parameter keys the cache: apply-order recycles filenames,
// so clients fetch under the new epoch and never see a stale rendering.
func (s *Server) ServeThumbnail(c *gin.Context) {
	epoch, err := strconv.ParseInt(c.DefaultQuery("epoch", "0"), 10, 64)
	if err != nil {
		RespondBadRequest(c, "invalid epoch")
		return
	}

	path, err := s.library.Thumbnail(c.Param("project"), c.Param("filename"), epoch)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondNotFound(c, "screen not found")
			return
		}
		log.Error().Err(err).Str("filename", c.Param("filename")).Msg("failed to generate thumbnail")
		RespondInternalError(c, "failed to generate thumbnail")
		return
	}

	c.Header("Content-Type", "image/jpeg")
	// Epoch-keyed, so the rendered bytes for this URL never change
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(path)
}
