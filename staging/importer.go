// Package staging watches an external pending pool of captured screenshots
// and imports new arrivals into the open project's sequence, in strict
// arrival order, without duplication, and guarded against re-entrant
// import loops.
package staging

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/store"
)

// PendingScreenshot is a captured screen sitting in the staging pool, not
// yet attached to any project sequence
type PendingScreenshot struct {
	Filename  string `json:"filename"`
	CreatedAt int64  `json:"createdAt"`
}

// Pool is the staging side of the backend of record
type Pool interface {
	FetchPendingPool(ctx context.Context) ([]PendingScreenshot, error)
	// ImportPending moves a pending file into a project and returns the
	// filename it was imported under.
	ImportPending(ctx context.Context, projectID, filename string) (string, error)
}

// Sequence is the slice of the session store the importer appends into.
// AppendIfProject must check the open session and append under one lock,
// so a session switch can never slip a screen into the wrong sequence; a
// mismatch returns store.ErrNoSession.
type Sequence interface {
	AppendIfProject(projectID string, screen store.Screen) error
}

// Importer deduplicates the pending pool against a known-file set and
// auto-imports new arrivals.
//
// The importing flag is the re-entrancy guard: at most one import sequence
// runs at a time, and a poll tick that finds one in flight skips its
// auto-import step entirely rather than queueing (the tick still refreshes
// the known set). Manual imports serialize with the auto loop on importMu.
type Importer struct {
	pool Pool
	seq  Sequence

	mu      sync.Mutex // guards known, auto, project
	known   map[string]struct{}
	auto    bool
	project string

	importing atomic.Bool
	importMu  sync.Mutex
}

// New creates an importer appending into seq
func New(pool Pool, seq Sequence) *Importer {
	return &Importer{
		pool:  pool,
		seq:   seq,
		known: make(map[string]struct{}),
	}
}

// SetProject switches the import target. Auto-import always drops with it:
// importing into the wrong project is a safety hazard, so a project switch
// never carries the mode over, and an in-flight import loop sees the
// switch and exits before its next file.
func (imp *Importer) SetProject(projectID string) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.project = projectID
	imp.auto = false
}

// Project returns the current import target
func (imp *Importer) Project() string {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.project
}

// AutoEnabled reports whether auto-import is on
func (imp *Importer) AutoEnabled() bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.auto
}

// EnableAuto turns on auto-import, snapshotting the current pool as
// already known so pre-existing pending files are not retroactively
// imported.
func (imp *Importer) EnableAuto(ctx context.Context) error {
	pending, err := imp.pool.FetchPendingPool(ctx)
	if err != nil {
		return err
	}

	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.known = make(map[string]struct{}, len(pending))
	for _, p := range pending {
		imp.known[p.Filename] = struct{}{}
	}
	imp.auto = true
	return nil
}

// DisableAuto turns off auto-import. The known set is kept.
func (imp *Importer) DisableAuto() {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.auto = false
}

// Poll fetches the pending pool, diffs it against the known set and, when
// auto-import is on and a target project is selected, imports the new
// arrivals sequentially in created_at ascending order. The known set is
// refreshed to the full current pool on every tick regardless of import
// outcome, including ticks whose auto-import step was skipped by the
// re-entrancy guard.
func (imp *Importer) Poll(ctx context.Context) error {
	pending, err := imp.pool.FetchPendingPool(ctx)
	if err != nil {
		return err
	}

	imp.mu.Lock()
	var newFiles []PendingScreenshot
	for _, p := range pending {
		if _, seen := imp.known[p.Filename]; !seen {
			newFiles = append(newFiles, p)
		}
	}
	imp.known = make(map[string]struct{}, len(pending))
	for _, p := range pending {
		imp.known[p.Filename] = struct{}{}
	}
	auto := imp.auto
	project := imp.project
	imp.mu.Unlock()

	if !auto || project == "" || len(newFiles) == 0 {
		return nil
	}

	if !imp.importing.CompareAndSwap(false, true) {
		// An import sequence is already in flight: skip, don't queue
		log.Debug().Int("new", len(newFiles)).Msg("auto-import in flight, skipping tick")
		return nil
	}
	defer imp.importing.Store(false)

	imp.importMu.Lock()
	defer imp.importMu.Unlock()

	sort.SliceStable(newFiles, func(i, j int) bool {
		return newFiles[i].CreatedAt < newFiles[j].CreatedAt
	})

	for _, p := range newFiles {
		// Soft cancel: a project switch aborts the loop before the next file
		if imp.Project() != project {
			log.Info().Str("project", project).Msg("target project changed, aborting import loop")
			break
		}

		newName, err := imp.pool.ImportPending(ctx, project, p.Filename)
		if err != nil {
			log.Error().Err(err).Str("filename", p.Filename).Msg("auto-import failed")
			continue
		}
		if err := imp.seq.AppendIfProject(project, store.Screen{Filename: newName}); err != nil {
			if errors.Is(err, store.ErrNoSession) {
				log.Debug().Str("filename", newName).Msg("session moved on, imported screen not appended")
			} else {
				log.Warn().Err(err).Str("filename", newName).Msg("imported screen not appended to session")
			}
		}
		log.Info().Str("filename", p.Filename).Str("as", newName).Msg("auto-imported screen")
	}

	return nil
}

// ImportOne imports a single pending file on demand, independent of the
// re-entrancy guard but serialized with any running auto-import loop
func (imp *Importer) ImportOne(ctx context.Context, projectID, filename string) (string, error) {
	imp.importMu.Lock()
	defer imp.importMu.Unlock()

	newName, err := imp.pool.ImportPending(ctx, projectID, filename)
	if err != nil {
		return "", err
	}
	if err := imp.seq.AppendIfProject(projectID, store.Screen{Filename: newName}); err != nil {
		if errors.Is(err, store.ErrNoSession) {
			log.Debug().Str("filename", newName).Msg("session moved on, imported screen not appended")
		} else {
			log.Warn().Err(err).Str("filename", newName).Msg("imported screen not appended to session")
		}
	}
	return newName, nil
}
