/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu      sync.Mutex
	events  []map[string]any
	crashes [][]byte
}

func (c *collector) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		c.mu.Lock()
		c.events = append(c.events, m)
		c.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.crashes = append(c.crashes, b)
		c.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (c *collector) eventCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_EventAndUploadCrash(t *testing.T) {
	var col collector
	srv := col.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()

	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}
	c.Event("replay_done", map[string]any{"gestures": 3, "name": "spoofed"})
	c.Flush(context.Background())
	waitFor(t, func() bool { return col.eventCount() == 1 })

	col.mu.Lock()
	m := col.events[0]
	col.mu.Unlock()
	if m["name"] != "replay_done" || m["gestures"] != float64(3) {
		t.Fatalf("unexpected event %v", m)
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}

	c.UploadCrash([]byte("STACKTRACE"))
	waitFor(t, func() bool {
		col.mu.Lock()
		defer col.mu.Unlock()
		return len(col.crashes) == 1 && string(col.crashes[0]) == "STACKTRACE"
	})
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CSN_TELEMETRY_OPT_IN", "true")
	t.Setenv("CSN_TELEMETRY_URL", "http://127.0.0.1:0")
	t.Setenv("CSN_CRASH_UPLOAD_URL", "")
	t.Setenv("CSN_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL == "" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}
	c := New(cfg)
	SetDefault(c)
	if !Default().Enabled() {
		t.Fatalf("default client should be enabled with env config")
	}
	SetDefault(nil)
}
