//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"canvassnap/internal/canvas"
	"canvassnap/internal/config"
	"canvassnap/internal/crash"
	"canvassnap/internal/export"
	applog "canvassnap/internal/log"
	"canvassnap/internal/scene"
	"canvassnap/internal/telemetry"
	"canvassnap/internal/version"
)

// Run opens the board editor window. scenePath may be empty for a demo board;
// a scene file given here is watched and reloaded when it changes on disk.
func Run(scenePath string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("scene", scenePath))

	b := canvas.NewBoard(demoObjects()...)
	ed := NewEditor(b, cfg.Snap.Options())
	ed.Controller().SetReporter(telemetry.NewFallbackReporter(telemetry.Default(), time.Minute))

	// mu guards path; the watcher goroutine reads it.
	var mu sync.Mutex
	path := ""
	currentPath := func() string { mu.Lock(); defer mu.Unlock(); return path }

	cc := &crash.Context{Autosave: func() (string, error) {
		dst := currentPath()
		if dst == "" {
			dst = filepath.Join(os.TempDir(), "canvassnap-untitled.json")
		}
		return scene.Autosave(dst, scene.FromBoard(b.Objects(), b.Viewport()))
	}}
	defer crash.Recover(cc)

	fyneApp := app.NewWithID("canvassnap")
	w := fyneApp.NewWindow("CanvasSnap")
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1200), 640)
	winH := max(prefs.IntWithFallback("window.height", 800), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	board := NewBoardCanvas(ed, cfg.Snap.ShowGuides)
	board.OnChange = func() { status.SetText(statusLine(ed)) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stopWatch context.CancelFunc

	open := func(p string) error {
		s, err := scene.Load(p)
		if err != nil {
			return err
		}
		ed.Reload(s.BoardObjects())
		vp := s.Viewport
		cur := b.Viewport()
		vp.Width, vp.Height = cur.Width, cur.Height
		b.SetViewport(vp)
		mu.Lock()
		path = p
		cc.ScenePath = p
		mu.Unlock()
		w.SetTitle("CanvasSnap - " + filepath.Base(p))
		addRecentScene(prefs, p)
		if stopWatch != nil {
			stopWatch()
		}
		var wctx context.Context
		wctx, stopWatch = context.WithCancel(ctx)
		go func() {
			err := scene.Watch(wctx, p, scene.DefaultDebounce, func(s *scene.Scene) {
				fyne.Do(func() {
					objs := s.BoardObjects()
					if ed.Dragging() || sameObjects(objs, b.Objects()) {
						return
					}
					ed.Reload(objs)
					board.Refresh()
					status.SetText("Reloaded " + filepath.Base(p))
				})
			}, func(err error) {
				l.Debug("scene reload failed", slog.Any("err", err))
			})
			if err != nil {
				l.Warn("scene watch stopped", slog.Any("err", err))
			}
		}()
		board.Refresh()
		status.SetText(fmt.Sprintf("Opened %s (%d objects)", filepath.Base(p), len(s.Objects)))
		l.Info("scene opened", slog.String("path", p), slog.Int("objects", len(s.Objects)))
		return nil
	}

	saveTo := func(p string) error {
		if err := scene.Save(p, scene.FromBoard(b.Objects(), b.Viewport())); err != nil {
			return err
		}
		mu.Lock()
		path = p
		cc.ScenePath = p
		mu.Unlock()
		w.SetTitle("CanvasSnap - " + filepath.Base(p))
		addRecentScene(prefs, p)
		status.SetText("Saved " + filepath.Base(p))
		l.Info("scene saved", slog.String("path", p))
		return nil
	}

	jsonFilter := fstorage.NewExtensionFileFilter([]string{".json"})
	openItem := fyne.NewMenuItem("Open…", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if rc == nil {
				return
			}
			_ = rc.Close()
			if err := open(rc.URI().Path()); err != nil {
				l.Error("open scene failed", slog.Any("err", err))
				dialog.ShowError(err, w)
			}
		}, w)
		fd.SetFilter(jsonFilter)
		fd.Show()
	})
	saveAsItem := fyne.NewMenuItem("Save As…", func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if wc == nil {
				return
			}
			_ = wc.Close()
			if err := saveTo(wc.URI().Path()); err != nil {
				l.Error("save scene failed", slog.Any("err", err))
				dialog.ShowError(err, w)
			}
		}, w)
		fd.SetFileName("scene.json")
		fd.SetFilter(jsonFilter)
		fd.Show()
	})
	saveItem := fyne.NewMenuItem("Save", func() {
		p := currentPath()
		if p == "" {
			saveAsItem.Action()
			return
		}
		if err := saveTo(p); err != nil {
			l.Error("save scene failed", slog.Any("err", err))
			dialog.ShowError(err, w)
		}
	})
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}

	recentItem := fyne.NewMenuItem("Open Recent", nil)
	refreshRecent := func() {
		var items []*fyne.MenuItem
		for _, p := range loadRecentScenes(prefs) {
			items = append(items, fyne.NewMenuItem(p, func() {
				if err := open(p); err != nil {
					dialog.ShowError(err, w)
				}
			}))
		}
		if len(items) == 0 {
			items = append(items, &fyne.MenuItem{Label: "(none)", Disabled: true})
		}
		recentItem.ChildMenu = fyne.NewMenu("", items...)
	}
	refreshRecent()
	fileMenu := fyne.NewMenu("File", openItem, recentItem, fyne.NewMenuItemSeparator(), saveItem, saveAsItem)

	undoItem := fyne.NewMenuItem("Undo", func() {
		if ed.Undo() {
			board.Refresh()
			status.SetText(statusLine(ed))
		}
	})
	redoItem := fyne.NewMenuItem("Redo", func() {
		if ed.Redo() {
			board.Refresh()
			status.SetText(statusLine(ed))
		}
	})
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	for _, it := range []*fyne.MenuItem{openItem, saveItem, undoItem, redoItem} {
		act := it.Action
		w.Canvas().AddShortcut(it.Shortcut, func(fyne.Shortcut) { act() })
	}
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem)

	exportAs := func(ext string, write func(string, export.Overlay, export.Options) error) func() {
		return func() {
			fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if wc == nil {
					return
				}
				_ = wc.Close()
				dst := wc.URI().Path()
				ov := export.Capture(b, ed.Guides(), ed.Selected())
				if err := write(dst, ov, export.Options{Labels: true}); err != nil {
					l.Error("export failed", slog.String("format", ext), slog.Any("err", err))
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Exported " + filepath.Base(dst))
			}, w)
			fd.SetFileName("board" + ext)
			fd.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
			fd.Show()
		}
	}
	exportMenu := fyne.NewMenu("Export",
		fyne.NewMenuItem("Export PNG…", exportAs(".png", export.ExportOverlayPNG)),
		fyne.NewMenuItem("Export PDF…", exportAs(".pdf", export.ExportOverlayPDF)),
	)

	aboutItem := fyne.NewMenuItem("About CanvasSnap", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("CanvasSnap\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, exportMenu, fyne.NewMenu("About", aboutItem)))

	w.SetContent(container.NewBorder(nil, status, nil, nil, board))
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	if scenePath != "" {
		if err := open(scenePath); err != nil {
			l.Error("auto-open scene failed", slog.Any("err", err))
			status.SetText("Could not open " + scenePath + ": " + err.Error())
		}
		refreshRecent()
	}

	w.ShowAndRun()
	return nil
}

func statusLine(ed *Editor) string {
	d := ed.Diagnostics()
	sel := ed.Selected()
	if sel == "" {
		sel = "-"
	}
	return fmt.Sprintf("selected: %s  state: %s  guides: %d  snapped: %d/%d  fallbacks: %d",
		sel, ed.Controller().State(), len(ed.Guides()), d.Snapped, d.Resolves, d.Fallbacks())
}

// Recent scene persistence
const recentPrefsKey = "recent.scenes"
const recentMax = 10

func loadRecentScenes(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func addRecentScene(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	out := []string{abs}
	for _, s := range loadRecentScenes(p) {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	b, _ := json.Marshal(out)
	p.SetString(recentPrefsKey, string(b))
}
