package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/config"
)

func testEnv(t *testing.T, storage string) config.Env {
	t.Helper()
	return config.Env{
		Addr:         "127.0.0.1:0",
		DataDir:      t.TempDir(),
		Storage:      storage,
		Difficulty:   "normal",
		Autosave:     true,
		TickInterval: time.Second,
	}
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApp_ResumesAcrossRestarts(t *testing.T) {
	for _, storage := range []string{"file", "sqlite"} {
		t.Run(storage, func(t *testing.T) {
			ctx := context.Background()
			env := testEnv(t, storage)
			logger := log.New(io.Discard, "", 0)

			first, err := newApp(ctx, env, logger)
			if err != nil {
				t.Fatalf("first start: %v", err)
			}
			rec := postJSON(t, first.server.Handler(), "/api/bank/deposit", `{"amount":"60"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("deposit expected 200, got %d body=%s", rec.Code, rec.Body.String())
			}
			id := first.playerID
			if err := first.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			second, err := newApp(ctx, env, logger)
			if err != nil {
				t.Fatalf("second start: %v", err)
			}
			defer second.Close()
			if second.playerID != id {
				t.Fatalf("expected remembered player %q, got %q", id, second.playerID)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
			rec = httptest.NewRecorder()
			second.server.Handler().ServeHTTP(rec, req)
			var st struct {
				Balances struct {
					Wallet int64 `json:"wallet"`
					Bank   int64 `json:"bank"`
				} `json:"balances"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
				t.Fatalf("decode state: %v", err)
			}
			if st.Balances.Wallet != 40 || st.Balances.Bank != 60 {
				t.Fatalf("expected 40/60 after restart, got %d/%d", st.Balances.Wallet, st.Balances.Bank)
			}
		})
	}
}

func TestApp_ExplicitPlayerID(t *testing.T) {
	env := testEnv(t, "memory")
	env.PlayerID = "not a valid id!"
	if _, err := newApp(context.Background(), env, log.New(io.Discard, "", 0)); err == nil {
		t.Fatalf("expected invalid player id to be rejected")
	}

	env.PlayerID = "Local_Player-1"
	a, err := newApp(context.Background(), env, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.Close()
	if a.playerID != "Local_Player-1" {
		t.Fatalf("unexpected player id %q", a.playerID)
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	env := testEnv(t, "memory")
	a, err := newApp(context.Background(), env, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}
