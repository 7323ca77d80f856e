package staging

import (
	"context"
	"sync"
	"time"

	"github.com/flowdeck-app/flowdeck/log"
	"github.com/fsnotify/fsnotify"
)

// Worker drives the importer: a fixed-interval ticker plus fsnotify
// create events on the staging directory, coalesced into poll calls
type Worker struct {
	importer   *Importer
	stagingDir string
	interval   time.Duration
	watcher    *fsnotify.Watcher
	nudge      chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
	onPoll     func()
}

// NewWorker creates a staging worker polling at the given interval
func NewWorker(importer *Importer, stagingDir string, interval time.Duration) *Worker {
	return &Worker{
		importer:   importer,
		stagingDir: stagingDir,
		interval:   interval,
		nudge:      make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}
}

// SetPollHandler sets a callback invoked after every completed poll,
// used to push pool changes to the UI
func (w *Worker) SetPollHandler(fn func()) {
	w.onPoll = fn
}

// Start begins watching the staging directory and polling
func (w *Worker) Start() error {
	var err error
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.watcher.Add(w.stagingDir); err != nil {
		log.Warn().Err(err).Str("dir", w.stagingDir).Msg("failed to watch staging directory")
	}

	log.Info().Str("dir", w.stagingDir).Dur("interval", w.interval).Msg("starting staging worker")

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops the worker and waits for the loop to exit
func (w *Worker) Stop() {
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
	log.Info().Msg("staging worker stopped")
}

// Nudge requests an immediate poll. Non-blocking; nudges coalesce.
func (w *Worker) Nudge() {
	select {
	case w.nudge <- struct{}{}:
	default:
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll()

		case <-w.nudge:
			w.poll()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				w.Nudge()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("staging watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Worker) poll() {
	if err := w.importer.Poll(context.Background()); err != nil {
		log.Error().Err(err).Msg("staging poll failed")
		return
	}
	if w.onPoll != nil {
		w.onPoll()
	}
}
