package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/staging"
	"github.com/flowdeck-app/flowdeck/utils"
)

// FetchPendingPool scans the staging directory for captured screenshots
// not yet attached to any project, sorted by arrival time ascending
func (s *Service) FetchPendingPool(ctx context.Context) ([]staging.PendingScreenshot, error) {
	entries, err := os.ReadDir(s.cfg.StagingDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pool []staging.PendingScreenshot
	for _, entry := range entries {
		if entry.IsDir() || !utils.IsScreenshotFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		pool = append(pool, staging.PendingScreenshot{
			Filename:  entry.Name(),
			CreatedAt: info.ModTime().UnixMilli(),
		})
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].CreatedAt < pool[j].CreatedAt
	})
	return pool, nil
}

// ImportPending moves a pending screenshot from the staging pool into a
// project, appending it to the tail of the sequence. The filename is
// sanitized and deduplicated against the project's existing screens;
// the name it lands under is returned.
func (s *Service) ImportPending(ctx context.Context, projectID, filename string) (string, error) {
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	project, err := db.GetProject(projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", ErrProjectNotFound
	}

	src := filepath.Join(s.cfg.StagingDir, filename)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return "", ErrPendingNotFound
	} else if err != nil {
		return "", err
	}

	dir := s.cfg.ProjectDir(projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := utils.SanitizeFilename(filename)
	exists, err := db.ScreenExists(projectID, name)
	if err != nil {
		return "", err
	}
	if exists {
		name = utils.DeduplicateFilename(dir, name)
	}

	if err := os.Rename(src, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("import pending: %w", err)
	}

	if _, err := db.AppendScreen(projectID, name); err != nil {
		// The file already moved; put it back so the pool stays consistent
		if rbErr := os.Rename(filepath.Join(dir, name), src); rbErr != nil {
			log.Error().Err(rbErr).Str("filename", name).Msg("failed to return file to staging after db error")
		}
		return "", err
	}

	log.Info().Str("project", projectID).Str("filename", filename).Str("as", name).Msg("pending screenshot imported")
	return name, nil
}
