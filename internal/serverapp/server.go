package serverapp

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/game"
	"github.com/codenameoperative/what-is-life-sub001/internal/httpmw"
	"github.com/codenameoperative/what-is-life-sub001/internal/save"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
	"github.com/go-chi/chi/v5"
)

type Options struct {
	Engine  game.Engine
	Saves   save.Repository
	Events  telemetry.Repository
	Logger  *log.Logger
	BootNow time.Time
}

// Server exposes the engine over HTTP and a websocket feed.
type Server struct {
	engine  game.Engine
	saves   save.Repository
	events  telemetry.Repository
	logger  *log.Logger
	bootNow time.Time
	hub     *hub
}

func New(opts Options) (*Server, error) {
	if opts.Engine.Store == nil || opts.Engine.Config == nil {
		return nil, errors.New("engine with store and config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Saves == nil {
		opts.Saves = opts.Engine.Saves
	}
	if opts.Events == nil {
		opts.Events = opts.Engine.Events
	}
	if opts.BootNow.IsZero() {
		opts.BootNow = time.Now().UTC()
	}
	return &Server{
		engine:  opts.Engine,
		saves:   opts.Saves,
		events:  opts.Events,
		logger:  opts.Logger,
		bootNow: opts.BootNow,
		hub:     newHub(),
	}, nil
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Get("/shop", s.getShop)
		r.Get("/achievements", s.getAchievements)
		r.Get("/jobs", s.getJobs)
		r.Get("/stats", s.getStats)
		r.Get("/saves", s.getSaves)
		r.Get("/catalog", s.getCatalog)
		r.Get("/live", s.live)

		r.Post("/bank/deposit", s.transfer(s.engine.Deposit, walletBalance))
		r.Post("/bank/withdraw", s.transfer(s.engine.Withdraw, bankBalance))
		r.Post("/stash/deposit", s.transfer(s.engine.Stash, walletBalance))
		r.Post("/stash/withdraw", s.transfer(s.engine.Unstash, stashBalance))

		r.Post("/shop/buy", s.buy)
		r.Post("/shop/sell", s.sell)
		r.Post("/items/{item}/use", s.useItem)
		r.Post("/activities/{activity}", s.runActivity)

		r.Post("/jobs/{job}/apply", s.applyJob)
		r.Post("/job/work", s.work)
		r.Post("/job/quit", s.quitJob)

		r.Post("/garden/{plot}/plant", s.plant)
		r.Post("/garden/{plot}/harvest", s.harvest)

		r.Post("/profile/title", s.equipTitle)
		r.Post("/profile/name", s.rename)

		r.Get("/export", s.export)
		r.Post("/import", s.importState)
		r.Post("/reset", s.reset)
		r.Post("/save", s.saveNow)
	})

	return httpmw.Chain(
		r,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(s.logger),
		httpmw.WithRecover(s.logger),
	)
}

// Announce pushes a scheduler tick to every live client.
func (s *Server) Announce(tr game.TickResult) {
	if !tr.Changed || len(tr.Result.Notices) == 0 {
		return
	}
	s.hub.broadcast(tr.Result.Notices)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "what-is-life",
		"version": s.engine.Config.Version,
		"uptime":  time.Since(s.bootNow).Round(time.Second).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads an optional body; an empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequest{err}
	}
	return nil
}

type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return "bad request: " + e.err.Error() }
func (e errBadRequest) Unwrap() error { return e.err }
