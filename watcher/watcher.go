// Package watcher converts a tablature file again whenever it changes.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"moria.us/lettertab/tab"
)

// Editors often save with several writes, or by replacing the file. Wait for
// changes to settle before converting.
const rebuildDelay = 100 * time.Millisecond

// A State is the result of converting the file.
type State struct {
	Err    error
	Notes  []tab.Note
	Output string
}

// Convert reads and converts a tablature file.
func Convert(filename string, opts tab.Options) *State {
	fp, err := os.Open(filename)
	if err != nil {
		return &State{Err: err}
	}
	defer fp.Close()
	notes, err := tab.ConvertNotes(fp, opts)
	if err != nil {
		return &State{Err: err}
	}
	return &State{
		Notes:  notes,
		Output: tab.Render(notes),
	}
}

type watcher struct {
	filename string
	opts     tab.Options
	output   chan<- *State
	watcher  *fsnotify.Watcher
	delay    delay
}

// Watch converts the file and sends the result, then sends a new result each
// time the file changes. The channel is closed when the context is done.
func Watch(ctx context.Context, filename string, opts tab.Options) (<-chan *State, error) {
	filename, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, since saving may replace the file.
	if err := fw.Add(filepath.Dir(filename)); err != nil {
		fw.Close()
		return nil, err
	}
	ch := make(chan *State, 1)
	w := watcher{
		filename: filename,
		opts:     opts,
		output:   ch,
		watcher:  fw,
	}
	go w.watch(ctx)
	return ch, nil
}

func (w *watcher) watch(ctx context.Context) {
	defer close(w.output)
	defer w.watcher.Close()
	defer w.delay.stop()
	if err := w.watchFunc(ctx); err != nil && ctx.Err() == nil {
		w.send(ctx, &State{Err: err})
	}
}

func (w *watcher) send(ctx context.Context, s *State) bool {
	select {
	case w.output <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *watcher) convert(ctx context.Context) bool {
	log := logrus.WithField("file", w.filename)
	s := Convert(w.filename, w.opts)
	if s.Err != nil {
		log.Errorln("Convert:", s.Err)
	} else {
		log.Infof("Converted: %d notes", len(s.Notes))
	}
	return w.send(ctx, s)
}

func (w *watcher) watchFunc(ctx context.Context) error {
	if !w.convert(ctx) {
		return ctx.Err()
	}
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if ev.Name == w.filename && ev.Op&^fsnotify.Chmod != 0 {
				logrus.Debugln("Changed:", ev)
				w.delay.trigger(rebuildDelay)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher channel closed")
			}
			return err
		case <-w.delay.channel:
			if rem := w.delay.fired(); rem > 0 {
				w.delay.trigger(rem)
			} else if !w.convert(ctx) {
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
