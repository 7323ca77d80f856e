// Package library is the backend of record: screenshot files on disk plus
// sqlite metadata. It implements the store.Backend and staging.Pool
// interfaces consumed by the engine.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowdeck-app/flowdeck/config"
	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/store"
	"github.com/flowdeck-app/flowdeck/utils"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrPendingNotFound = errors.New("pending file not found")
)

// Service exposes project sequences, deleted batches, branch overlay data
// and the staging pool over the data directory
type Service struct {
	cfg *config.Config
}

// NewService creates a library service over the configured data directory
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// FetchSequence returns a project's live screens in sequence order
func (s *Service) FetchSequence(ctx context.Context, projectID string) ([]store.Screen, error) {
	records, err := db.GetLiveScreens(projectID)
	if err != nil {
		return nil, err
	}
	screens := make([]store.Screen, len(records))
	for i, r := range records {
		screens[i] = store.Screen{Filename: r.Filename}
	}
	return screens, nil
}

// FetchDeletedBatches returns a project's deleted batches, newest first
func (s *Service) FetchDeletedBatches(ctx context.Context, projectID string) ([]store.DeletedBatch, error) {
	records, err := db.GetDeletedBatches(projectID)
	if err != nil {
		return nil, err
	}
	batches := make([]store.DeletedBatch, len(records))
	for i, r := range records {
		batches[i] = store.DeletedBatch{
			Timestamp: r.Timestamp,
			Count:     r.Count,
			Filenames: r.Filenames,
		}
	}
	return batches, nil
}

// FetchOnboardingRange returns a project's onboarding range
func (s *Service) FetchOnboardingRange(ctx context.Context, projectID string) (store.OnboardingRange, error) {
	r, err := db.GetOnboardingRange(projectID)
	if err != nil {
		return store.OnboardingRange{}, err
	}
	return store.OnboardingRange{Start: r.Start, End: r.End}, nil
}

// SaveOnboardingRange persists a project's onboarding range
func (s *Service) SaveOnboardingRange(ctx context.Context, projectID string, r store.OnboardingRange) error {
	return db.SaveOnboardingRange(projectID, db.OnboardingRangeRecord{Start: r.Start, End: r.End})
}

// DeleteScreens soft-deletes the given filenames into a new batch and
// returns the batch timestamp. Rows and files are parked under batch-scoped
// names so the deleted screens' canonical slots stay free for a later
// renumbering; the files stay on disk until the batch is purged, so a
// restore is always possible.
func (s *Service) DeleteScreens(ctx context.Context, projectID string, filenames []string) (int64, error) {
	dir := s.cfg.ProjectDir(projectID)
	ts := db.NowMilli()

	parks := make([]db.ParkedScreen, len(filenames))
	for i, f := range filenames {
		parks[i] = db.ParkedScreen{
			Parked:   fmt.Sprintf(".trash-%d-%s", ts, f),
			Original: f,
		}
	}

	// Park the files first; the rows follow in one transaction. Either
	// step failing unparks everything already moved.
	for i, p := range parks {
		if err := os.Rename(filepath.Join(dir, p.Original), filepath.Join(dir, p.Parked)); err != nil {
			s.unparkFiles(dir, parks[:i])
			return 0, fmt.Errorf("delete screens: %w", err)
		}
	}
	if err := db.SoftDeleteScreens(projectID, ts, parks); err != nil {
		s.unparkFiles(dir, parks)
		return 0, err
	}

	log.Info().Str("project", projectID).Int("count", len(filenames)).Int64("batch", ts).Msg("screens deleted")
	return ts, nil
}

// unparkFiles moves parked files back to their original names, best effort
func (s *Service) unparkFiles(dir string, parks []db.ParkedScreen) {
	for i := len(parks) - 1; i >= 0; i-- {
		p := parks[i]
		if err := os.Rename(filepath.Join(dir, p.Parked), filepath.Join(dir, p.Original)); err != nil {
			log.Error().Err(err).Str("filename", p.Original).Msg("failed to unpark file")
		}
	}
}

// RestoreBatch returns a deleted batch to the live sequence and hands back
// the authoritative sequence. Restored screens are appended after the
// current tail under the names they were deleted with; a name since
// recycled by a renumbering is deduplicated instead of displacing the live
// screen that holds it now.
func (s *Service) RestoreBatch(ctx context.Context, projectID string, batchTS int64) ([]store.Screen, error) {
	parked, err := db.GetBatchScreens(projectID, batchTS)
	if err != nil {
		return nil, err
	}
	if len(parked) == 0 {
		return nil, fmt.Errorf("batch %d not found", batchTS)
	}

	dir := s.cfg.ProjectDir(projectID)
	renames := make([]db.RenameEntry, len(parked))
	for i, p := range parked {
		name := utils.DeduplicateFilename(dir, p.Original)
		if err := os.Rename(filepath.Join(dir, p.Parked), filepath.Join(dir, name)); err != nil {
			s.reparkFiles(dir, renames[:i], parked)
			return nil, fmt.Errorf("restore batch: %w", err)
		}
		renames[i] = db.RenameEntry{OldFilename: p.Parked, NewFilename: name}
	}

	if err := db.RestoreBatch(projectID, batchTS, renames); err != nil {
		s.reparkFiles(dir, renames, parked)
		return nil, err
	}

	log.Info().Str("project", projectID).Int64("batch", batchTS).Msg("batch restored")
	return s.FetchSequence(ctx, projectID)
}

// reparkFiles moves restored files back to their parked names, best effort
func (s *Service) reparkFiles(dir string, renames []db.RenameEntry, parked []db.ParkedScreen) {
	for i := len(renames) - 1; i >= 0; i-- {
		if err := os.Rename(filepath.Join(dir, renames[i].NewFilename), filepath.Join(dir, parked[i].Parked)); err != nil {
			log.Error().Err(err).Str("filename", renames[i].NewFilename).Msg("failed to re-park file")
		}
	}
}

// SaveOrder persists new positions as metadata only; no files are renamed
func (s *Service) SaveOrder(ctx context.Context, projectID string, entries []store.OrderEntry) error {
	dbEntries := make([]db.OrderEntry, len(entries))
	for i, e := range entries {
		dbEntries[i] = db.OrderEntry{OriginalFile: e.OriginalFile, NewIndex: e.NewIndex}
	}
	return db.SaveScreenOrder(projectID, dbEntries)
}

// ApplyOrder physically renumbers a project's files to the canonical
// zero-padded scheme matching the requested order, preserving each
// screen's extension, and returns the canonical filenames in order.
//
// Renames run in two phases through temporary names so recycled filenames
// never collide on disk (renaming b.png->0001.png while 0001.png is still
// another live screen). Deleted screens sit under parked names, so a
// canonical target is only ever held by a file in this rename set. Any
// failure mid-phase or in the row update walks the disk back to the
// original filenames.
func (s *Service) ApplyOrder(ctx context.Context, projectID string, entries []store.OrderEntry) ([]string, error) {
	dir := s.cfg.ProjectDir(projectID)

	renames := make([]db.RenameEntry, len(entries))
	canonical := make([]string, len(entries))
	for i, e := range entries {
		if e.NewIndex != i+1 {
			return nil, fmt.Errorf("order entries must be contiguous and 1-based, got %d at %d", e.NewIndex, i)
		}
		newName := fmt.Sprintf("%04d%s", e.NewIndex, filepath.Ext(e.OriginalFile))
		renames[i] = db.RenameEntry{
			OldFilename: e.OriginalFile,
			NewFilename: newName,
			Position:    e.NewIndex,
		}
		canonical[i] = newName
	}

	applyTmp := func(i int) string {
		return filepath.Join(dir, fmt.Sprintf(".applying-%d%s", i, filepath.Ext(renames[i].OldFilename)))
	}

	// Phase one: every file moves to a temporary name
	for i, r := range renames {
		if r.OldFilename == r.NewFilename {
			continue
		}
		if err := os.Rename(filepath.Join(dir, r.OldFilename), applyTmp(i)); err != nil {
			for j := i - 1; j >= 0; j-- {
				if renames[j].OldFilename == renames[j].NewFilename {
					continue
				}
				if rbErr := os.Rename(applyTmp(j), filepath.Join(dir, renames[j].OldFilename)); rbErr != nil {
					log.Error().Err(rbErr).Str("filename", renames[j].OldFilename).Msg("failed to revert rename")
				}
			}
			return nil, fmt.Errorf("apply order: %w", err)
		}
	}

	// Phase two: temporary names move to their canonical names
	for i, r := range renames {
		if r.OldFilename == r.NewFilename {
			continue
		}
		if err := os.Rename(applyTmp(i), filepath.Join(dir, r.NewFilename)); err != nil {
			s.revertApply(dir, renames, i)
			return nil, fmt.Errorf("apply order: %w", err)
		}
	}

	if err := db.ApplyScreenRenames(projectID, renames); err != nil {
		s.revertApply(dir, renames, len(renames))
		return nil, err
	}

	log.Info().Str("project", projectID).Int("count", len(renames)).Msg("order applied, files renumbered")
	return canonical, nil
}

// revertApply walks a partially applied rename set back to the original
// filenames: entries already holding their canonical name return to their
// temporary names first, then every temporary name returns to its original
// name. The reverse also runs in two phases, for the same collision reason
// as the forward direction. Best effort; failures are logged.
func (s *Service) revertApply(dir string, renames []db.RenameEntry, applied int) {
	tmp := func(i int) string {
		return filepath.Join(dir, fmt.Sprintf(".applying-%d%s", i, filepath.Ext(renames[i].OldFilename)))
	}
	for j := applied - 1; j >= 0; j-- {
		if renames[j].OldFilename == renames[j].NewFilename {
			continue
		}
		if err := os.Rename(filepath.Join(dir, renames[j].NewFilename), tmp(j)); err != nil {
			log.Error().Err(err).Str("filename", renames[j].NewFilename).Msg("failed to revert applied rename")
		}
	}
	for j := range renames {
		if renames[j].OldFilename == renames[j].NewFilename {
			continue
		}
		if err := os.Rename(tmp(j), filepath.Join(dir, renames[j].OldFilename)); err != nil {
			log.Error().Err(err).Str("filename", renames[j].OldFilename).Msg("failed to revert rename")
		}
	}
}

// ScreenPath resolves a screen filename to its on-disk path, rejecting
// path traversal
func (s *Service) ScreenPath(projectID, filename string) (string, error) {
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return filepath.Join(s.cfg.ProjectDir(projectID), filename), nil
}
