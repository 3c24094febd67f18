/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a top-level panic into a crash report next to the open
// scene, an emergency save of the scene and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "canvassnap/internal/log"
	"canvassnap/internal/telemetry"
	"canvassnap/internal/version"
)

// ReportDirName is the directory next to the scene file that receives crash reports.
const ReportDirName = ".canvassnap"

// exitFn is replaced in tests.
var exitFn = os.Exit

// Context describes what was open when the process panicked. Autosave, when
// set, writes an emergency copy of the scene and returns its path.
type Context struct {
	ScenePath string
	Autosave  func() (string, error)
}

// Recover captures a panic, logs it with the stack trace, writes a report
// file, runs the autosave hook and exits with code 2.
//
// Usage: defer crash.Recover(ctx)
func Recover(c *Context) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(c, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if c != nil && c.Autosave != nil {
		if path, err := c.Autosave(); err != nil {
			l.Error("emergency scene save failed", slog.Any("err", err))
		} else {
			l.Info("emergency scene save written", slog.String("path", path))
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// reportDir is the scene's report directory, or the temp dir without a scene.
func reportDir(c *Context) string {
	if c == nil || c.ScenePath == "" {
		return os.TempDir()
	}
	dir := filepath.Join(filepath.Dir(c.ScenePath), ReportDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.TempDir()
	}
	return dir
}

func writeReport(c *Context, panicVal any, stack []byte) (string, error) {
	now := time.Now()
	path := filepath.Join(reportDir(c), fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "canvassnap crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if c != nil && c.ScenePath != "" {
		fmt.Fprintf(&buf, "Scene: %s\n", c.ScenePath)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// no-op unless telemetry is opted in with a crash URL
	telemetry.Default().UploadCrash(buf.Bytes())
	return path, nil
}
