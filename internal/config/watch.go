package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ErrChanged is the cancellation cause of a context returned by Watch.
type ErrChanged struct {
	Path string
	Op   fsnotify.Op
}

func (e *ErrChanged) Error() string {
	return fmt.Sprintf("%s changed (%s)", e.Path, e.Op)
}

// Watch returns a context that is canceled when the file at path is
// written, created, removed or renamed. context.Cause reports *ErrChanged.
func Watch(ctx context.Context, path string) (context.Context, context.CancelFunc, error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		cancel(err)
		return nil, nil, fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod {
					continue
				}
				cancel(&ErrChanged{Path: ev.Name, Op: ev.Op})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(err)
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
