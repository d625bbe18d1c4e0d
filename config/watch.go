package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the configuration at path whenever the file changes and
// passes every valid result to onChange. Invalid files are reported to
// onError and otherwise ignored. Watch blocks until ctx is done.
//
// The parent directory is watched so editors replacing the file by rename
// are seen too.
func Watch(ctx context.Context, path string, onChange func(Config), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}

	if onError == nil {
		onError = func(error) {}
	}

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}
			// reload once the burst of writes is over
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			c, err := Load(target)
			if err != nil {
				onError(err)
				continue
			}
			onChange(c)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)
		}
	}
}
