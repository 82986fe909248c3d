package config

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoConfigFile is returned by Watch when the resolver has no file layer
// to watch.
var ErrNoConfigFile = errors.New("config: no config file resolved")

const watchDebounce = 250 * time.Millisecond

// stopAndDrain stops a timer and discards a tick that already fired but
// has not been received, leaving the timer safe to Reset.
func stopAndDrain(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// Watch reloads the resolver whenever the config file changes, until ctx
// is canceled. Change bursts are debounced so editors that write in
// multiple steps trigger a single reload. Reload failures (for example a
// half-saved file that does not parse) are reported through onError and
// leave the previous snapshot in place; onError may be nil.
func (r *Resolver) Watch(ctx context.Context, onError func(error)) error {
	if r.filePath == "" {
		return ErrNoConfigFile
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: many editors replace the file on
	// save, which drops a file-level watch.
	dir := filepath.Dir(r.filePath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	target, err := filepath.Abs(r.filePath)
	if err != nil {
		target = r.filePath
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || abs != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
					timerC = timer.C
				} else {
					// The timer may have fired with its tick still
					// queued; drain it or the reset delivers two ticks.
					stopAndDrain(timer)
					timer.Reset(watchDebounce)
				}
			case <-timerC:
				timer = nil
				timerC = nil
				if err := r.Reload(); err != nil && onError != nil {
					onError(err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()

	return nil
}
