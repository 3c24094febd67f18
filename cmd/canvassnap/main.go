/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"canvassnap/internal/config"
	"canvassnap/internal/crash"
	applog "canvassnap/internal/log"
	"canvassnap/internal/scene"
	"canvassnap/internal/telemetry"
	"canvassnap/internal/ui"
	"canvassnap/internal/version"
)

func usage() {
	fmt.Println("CanvasSnap: alignment guides for a 2D canvas")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  canvassnap version|-v|--version                  Show version")
	fmt.Println("  canvassnap validate <scene.json>                 Check a scene file against the schema")
	fmt.Println("  canvassnap replay [flags] <scene.json>           Replay recorded gestures and print each snap")
	fmt.Println("      -png <file>   export the last frame with guides as PNG")
	fmt.Println("      -pdf <file>   export the last frame with guides as PDF")
	fmt.Println("      -save <file>  write the final board as a scene")
	fmt.Println("      -labels       draw ids and guide names in exports")
	fmt.Println("  canvassnap watch <scene.json>                    Replay again whenever the scene changes")
	fmt.Println("  canvassnap config                                Show the effective configuration")
	fmt.Println("  canvassnap ui [<scene.json>]                     Launch desktop UI (build with -tags fyne)")
}

func main() {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Defaults()
	}
	applog.Init(cfg.Logging.Options())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	tc := telemetry.New(cfg.Telemetry.Client())
	telemetry.SetDefault(tc)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tc.Flush(ctx)
		tc.Close()
	}()

	rp := &replayer{out: os.Stdout, opts: cfg.Snap.Options(), reporter: telemetry.NewFallbackReporter(tc, time.Minute)}
	cc := &crash.Context{}
	defer crash.Recover(cc)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("CanvasSnap")
		fmt.Println(version.String())
	case "validate":
		if len(args) < 3 {
			fmt.Println("validate requires <scene.json>")
			usage()
			os.Exit(2)
		}
		if _, err := scene.Load(args[2]); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("OK")
	case "replay":
		fs := flag.NewFlagSet("replay", flag.ExitOnError)
		fs.StringVar(&rp.pngPath, "png", "", "export PNG")
		fs.StringVar(&rp.pdfPath, "pdf", "", "export PDF")
		fs.StringVar(&rp.savePath, "save", "", "save final scene")
		fs.BoolVar(&rp.labels, "labels", false, "draw labels")
		_ = fs.Parse(args[2:])
		if fs.NArg() < 1 {
			fmt.Println("replay requires <scene.json>")
			usage()
			os.Exit(2)
		}
		path := fs.Arg(0)
		bindCrash(cc, rp, path)
		if _, err := rp.run(path); err != nil {
			l.Error("replay failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "watch":
		if len(args) < 3 {
			fmt.Println("watch requires <scene.json>")
			usage()
			os.Exit(2)
		}
		path := args[2]
		bindCrash(cc, rp, path)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := watch(ctx, rp, path); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "config":
		printConfig(os.Stdout, cfg)
	case "ui":
		var path string
		if len(args) >= 3 {
			path = args[2]
		}
		if err := ui.Run(path, cfg); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

// bindCrash points the crash handler at the scene being replayed.
func bindCrash(cc *crash.Context, rp *replayer, path string) {
	abs, _ := filepath.Abs(path)
	cc.ScenePath = abs
	cc.Autosave = func() (string, error) {
		if rp.board == nil {
			return "", errors.New("no board loaded")
		}
		return scene.Autosave(abs, scene.FromBoard(rp.board.Objects(), rp.board.Viewport()))
	}
}

// watch replays the scene once and again after every change on disk.
func watch(ctx context.Context, rp *replayer, path string) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "watch")
	ctx = applog.WithScene(ctx, path)
	replayOnce := func() {
		if _, err := rp.run(path); err != nil {
			l.ErrorContext(ctx, "replay failed", slog.Any("err", err))
			fmt.Fprintln(rp.out, "Error:", err)
		}
	}
	replayOnce()
	fmt.Fprintf(rp.out, "watching %s (Ctrl+C to stop)\n", path)
	return scene.Watch(ctx, path, scene.DefaultDebounce, func(*scene.Scene) {
		fmt.Fprintf(rp.out, "\n--- %s changed ---\n", filepath.Base(path))
		replayOnce()
	}, func(err error) {
		l.WarnContext(ctx, "scene not reloaded", slog.Any("err", err))
		fmt.Fprintln(rp.out, "Error:", err)
	})
}

func printConfig(w io.Writer, cfg config.AppConfig) {
	p, _ := config.ConfigPath()
	fmt.Fprintf(w, "file: %s\n", p)
	fmt.Fprintf(w, "snap.radius: %g\n", cfg.Snap.Radius)
	fmt.Fprintf(w, "snap.hysteresis_buffer: %g\n", cfg.Snap.HysteresisBuffer)
	fmt.Fprintf(w, "snap.edge_preference: %g\n", cfg.Snap.EdgePreference)
	fmt.Fprintf(w, "snap.show_guides: %t\n", cfg.Snap.ShowGuides)
	fmt.Fprintf(w, "logging.level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "telemetry.opt_in: %t\n", cfg.Telemetry.OptIn)
	for _, key := range []string{"snap.radius", "snap.hysteresis_buffer", "snap.edge_preference", "snap.show_guides", "telemetry.opt_in", "telemetry.url"} {
		if env, ok := config.EnvOverrideFor(key); ok {
			fmt.Fprintf(w, "  %s overridden by %s\n", key, env)
		}
	}
}
