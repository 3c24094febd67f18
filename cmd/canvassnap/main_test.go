/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"canvassnap/internal/config"
	"canvassnap/internal/crash"
	"canvassnap/internal/scene"
	"canvassnap/internal/snap"
)

const replayScene = `{
  "viewport": {"width": 1000, "height": 700},
  "objects": [
    {"id": "A", "x": 0, "y": 0, "width": 200, "height": 100},
    {"id": "B", "x": 380, "y": 125, "width": 220, "height": 400}
  ],
  "gestures": [
    {"object": "A", "kind": "drag", "moves": [{"x": 150, "y": 300}, {"x": 183}]},
    {"object": "B", "kind": "drag", "cancel": true, "moves": [{"x": 10, "y": 10}]}
  ]
}`

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}

type countingReporter map[string]int

func (c countingReporter) ReportFallback(reason string) { c[reason]++ }

func TestReplayPrintsSnapsAndFinalGeometry(t *testing.T) {
	path := writeScene(t, replayScene)
	var out bytes.Buffer
	rp := &replayer{out: &out, opts: snap.DefaultOptions(), reporter: countingReporter{}}
	d, err := rp.run(path)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"gesture 1: drag A",
		"move 2: position A x=183 y=300 -> position A x=180 y=300  [vertical left@380 (B)]",
		"cancelled",
		"  A x=180 y=300 width=200 height=100",
		"  B x=380 y=125 width=220 height=400",
		"resolves=3 snapped=1 fallbacks=0",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if d.Snapped != 1 || d.Fallbacks() != 0 {
		t.Fatalf("diagnostics = %+v", d)
	}
	if rp.board == nil {
		t.Fatalf("replayer should keep the board for autosave")
	}
}

func TestReplayWritesExportsAndScene(t *testing.T) {
	path := writeScene(t, replayScene)
	dir := t.TempDir()
	rp := &replayer{
		out:      &bytes.Buffer{},
		opts:     snap.DefaultOptions(),
		pngPath:  filepath.Join(dir, "out.png"),
		pdfPath:  filepath.Join(dir, "out.pdf"),
		savePath: filepath.Join(dir, "final.json"),
		labels:   true,
	}
	if _, err := rp.run(path); err != nil {
		t.Fatalf("replay: %v", err)
	}
	for _, p := range []string{rp.pngPath, rp.pdfPath, rp.savePath} {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	s, err := scene.Load(rp.savePath)
	if err != nil {
		t.Fatalf("load saved scene: %v", err)
	}
	if s.Objects[0].X != 180 || s.Objects[0].Y != 300 || len(s.Gestures) != 0 {
		t.Fatalf("saved scene = %+v", s)
	}
}

func TestReplayRejectsBrokenScene(t *testing.T) {
	path := writeScene(t, `{"objects": [{"x": 0}]}`)
	rp := &replayer{out: &bytes.Buffer{}, opts: snap.DefaultOptions()}
	if _, err := rp.run(path); err == nil {
		t.Fatalf("expected error for invalid scene")
	}
}

func TestBindCrashAutosavesBoard(t *testing.T) {
	path := writeScene(t, replayScene)
	rp := &replayer{out: &bytes.Buffer{}, opts: snap.DefaultOptions()}
	cc := &crash.Context{}
	bindCrash(cc, rp, path)
	if _, err := cc.Autosave(); err == nil {
		t.Fatalf("autosave without a board should fail")
	}
	if _, err := rp.run(path); err != nil {
		t.Fatalf("replay: %v", err)
	}
	dst, err := cc.Autosave()
	if err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if filepath.Dir(dst) != filepath.Join(filepath.Dir(path), scene.BackupsDirName) {
		t.Fatalf("autosave went to %s", dst)
	}
}

func TestPrintConfigShowsOverrides(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(config.EnvSnapRadius, "9")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var out bytes.Buffer
	printConfig(&out, cfg)
	if !strings.Contains(out.String(), "snap.radius: 9") || !strings.Contains(out.String(), "snap.radius overridden by CSN_SNAP_RADIUS") {
		t.Fatalf("config output:\n%s", out.String())
	}
}
