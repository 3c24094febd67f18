/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "canvassnap/internal/log"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watch reloads the scene at path whenever it changes on disk and hands the
// parsed result to fn. Saves that do not parse go to onErr and are skipped.
// The parent directory is watched so rename-on-save editors are seen too.
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(*Scene), onErr func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve scene path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	l := applog.WithOperation(applog.WithComponent("scene"), "watch").With(slog.String("path", abs))
	l.Debug("watching scene")

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, abs) {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			s, err := Load(abs)
			if err != nil {
				l.Debug("reload skipped", slog.Any("err", err))
				onErr(err)
				continue
			}
			l.Debug("scene reloaded", slog.Int("objects", len(s.Objects)))
			fn(s)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
			onErr(err)
		}
	}
}

func relevant(ev fsnotify.Event, abs string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	return err == nil && name == abs
}
