/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

// TestInitAndStructuredLoggingToFile checks the rotated JSON file output and
// the static, component and operation attributes.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	// system temp dir: Windows refuses to remove the still-open file from t.TempDir
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("csn_log_%d.json", time.Now().UnixNano()))
	Init(Options{Level: "debug", Format: "json", File: fpath})

	l := WithOperation(WithComponent("snap"), "rebuild")
	l.Info("index rebuilt", slog.Int("lines", 12))
	time.Sleep(50 * time.Millisecond)

	m := lastJSONLine(t, fpath)
	if m["app"] != "canvassnap" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "snap" || m["op"] != "rebuild" {
		t.Fatalf("component/op mismatch: %v %v", m["component"], m["op"])
	}
	if m["lines"] != float64(12) || m["msg"] != "index rebuilt" {
		t.Fatalf("record mismatch: %v", m)
	}
}

func TestSceneFromContextIsLogged(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("csn_scene_%d.json", time.Now().UnixNano()))
	Init(Options{Level: "info", Format: "json", File: fpath})

	ctx := WithScene(context.Background(), "scenes/demo.json")
	WithComponent("replay").InfoContext(ctx, "gesture replayed")
	time.Sleep(50 * time.Millisecond)

	m := lastJSONLine(t, fpath)
	if m["scene"] != "scenes/demo.json" {
		t.Fatalf("scene attr missing: %v", m)
	}
	if _, ok := SceneFrom(context.Background()); ok {
		t.Fatalf("empty context should carry no scene")
	}
}
