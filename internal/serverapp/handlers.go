package serverapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/codenameoperative/what-is-life-sub001/internal/game"
	"github.com/codenameoperative/what-is-life-sub001/internal/garden"
	"github.com/codenameoperative/what-is-life-sub001/internal/inventory"
	"github.com/codenameoperative/what-is-life-sub001/internal/job"
	"github.com/codenameoperative/what-is-life-sub001/internal/player"
	"github.com/codenameoperative/what-is-life-sub001/internal/save"
	"github.com/codenameoperative/what-is-life-sub001/internal/shop"
	"github.com/codenameoperative/what-is-life-sub001/internal/telemetry"
	"github.com/codenameoperative/what-is-life-sub001/internal/wallet"
	"github.com/go-chi/chi/v5"
)

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var bad errBadRequest
	switch {
	case errors.As(err, &bad),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, shop.ErrInvalidQuantity),
		errors.Is(err, player.ErrInvalidUsername),
		errors.Is(err, game.ErrUnknownVariant),
		errors.Is(err, garden.ErrNoSuchPlot),
		errors.Is(err, game.ErrInvalidSave),
		errors.Is(err, save.ErrBadEncoding),
		errors.Is(err, save.ErrBadDocument),
		errors.Is(err, save.ErrMissingVersion),
		errors.Is(err, save.ErrMissingState),
		errors.Is(err, save.ErrChecksumMismatch),
		errors.Is(err, save.ErrUnsupportedVersion):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownItem),
		errors.Is(err, game.ErrUnknownActivity),
		errors.Is(err, game.ErrUnknownJob),
		errors.Is(err, game.ErrUnknownTitle),
		errors.Is(err, save.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrOnCooldown),
		errors.Is(err, job.ErrShiftCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, shop.ErrNotEnoughWTC):
		return http.StatusPaymentRequired
	case errors.Is(err, shop.ErrOutOfStock),
		errors.Is(err, shop.ErrNotSellable),
		errors.Is(err, inventory.ErrNotOwned),
		errors.Is(err, inventory.ErrNotEnough),
		errors.Is(err, inventory.ErrInventoryFull),
		errors.Is(err, game.ErrMissingTool),
		errors.Is(err, game.ErrNotUsable),
		errors.Is(err, job.ErrAlreadyEmployed),
		errors.Is(err, job.ErrNotEmployed),
		errors.Is(err, job.ErrLevelTooLow),
		errors.Is(err, garden.ErrPlotOccupied),
		errors.Is(err, garden.ErrPlotEmpty),
		errors.Is(err, garden.ErrNotReady),
		errors.Is(err, garden.ErrNotASeed),
		errors.Is(err, player.ErrTitleLocked):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	body := map[string]any{"error": err.Error()}

	var cd *game.CooldownError
	var shift *job.CooldownError
	switch {
	case errors.As(err, &cd):
		body["retry_after_ms"] = cd.Remaining.Milliseconds()
		w.Header().Set("Retry-After", strconv.Itoa(int((cd.Remaining+time.Second-1)/time.Second)))
	case errors.As(err, &shift):
		body["retry_after_ms"] = shift.Remaining.Milliseconds()
		w.Header().Set("Retry-After", strconv.Itoa(int((shift.Remaining+time.Second-1)/time.Second)))
	}

	if code == http.StatusInternalServerError {
		s.logger.Printf(`{"level":"error","msg":"request_failed","path":%q,"err":%q}`, r.URL.Path, err.Error())
		body["error"] = "internal server error"
	}
	writeJSON(w, code, body)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, res game.Result, err error) {
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	v, err := s.engine.Shop(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) getAchievements(w http.ResponseWriter, r *http.Request) {
	board, err := s.engine.Achievements()
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type jobView struct {
	catalog.Job
	Eligible bool `json:"eligible"`
	Current  bool `json:"current"`
}

func (s *Server) getJobs(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Snapshot()
	c := &s.engine.Config.Catalog
	eligible := map[string]bool{}
	for _, j := range job.Eligible(c, st.Profile.Level) {
		eligible[j.ID] = true
	}
	out := make([]jobView, 0, len(c.Jobs))
	for _, j := range c.Jobs {
		out = append(out, jobView{Job: j, Eligible: eligible[j.ID], Current: st.Employment.JobID == j.ID})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":       out,
		"employment": st.Employment,
	})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusOK, telemetry.Stats{})
		return
	}
	since := time.Time{}
	if v := strings.TrimSpace(r.URL.Query().Get("since")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			s.writeErr(w, r, errBadRequest{err})
			return
		}
		since = time.Now().Add(-d)
	}
	events, err := s.events.GetEvents(since, nil)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getSaves(w http.ResponseWriter, r *http.Request) {
	if s.saves == nil {
		writeJSON(w, http.StatusOK, []save.Entry{})
		return
	}
	entries, err := s.saves.List(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Config)
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func walletBalance(st game.State) int64 { return st.Balances.Wallet }
func bankBalance(st game.State) int64   { return st.Balances.Bank }
func stashBalance(st game.State) int64  { return st.Balances.Stash }

// transfer parses amounts like "all", "half" or "2.5k" against the source balance.
func (s *Server) transfer(move func(context.Context, float64) (game.Result, error), source func(game.State) int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req amountRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeErr(w, r, err)
			return
		}
		amount, err := wallet.ParseAmount(req.Amount, source(s.engine.Snapshot()))
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		res, err := move(r.Context(), float64(amount))
		s.respond(w, r, res, err)
	}
}

type tradeRequest struct {
	Item string `json:"item"`
	Qty  int    `json:"qty"`
}

func (req *tradeRequest) normalize() error {
	if req.Qty == 0 {
		req.Qty = 1
	}
	if req.Qty < 0 || req.Qty > inventory.MaxStack {
		return errBadRequest{fmt.Errorf("qty must be between 1 and %d", inventory.MaxStack)}
	}
	return nil
}

func (s *Server) buy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := req.normalize(); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.Buy(r.Context(), req.Item, req.Qty)
	s.respond(w, r, res, err)
}

func (s *Server) sell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := req.normalize(); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.Sell(r.Context(), req.Item, req.Qty)
	s.respond(w, r, res, err)
}

func (s *Server) useItem(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.UseItem(r.Context(), chi.URLParam(r, "item"))
	s.respond(w, r, res, err)
}

type activityRequest struct {
	Variant string `json:"variant"`
}

func (s *Server) runActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if v := r.URL.Query().Get("variant"); v != "" {
		req.Variant = v
	}
	res, err := s.engine.RunActivity(r.Context(), chi.URLParam(r, "activity"), req.Variant)
	s.respond(w, r, res, err)
}

func (s *Server) applyJob(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.ApplyJob(r.Context(), chi.URLParam(r, "job"))
	s.respond(w, r, res, err)
}

func (s *Server) work(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Work(r.Context())
	s.respond(w, r, res, err)
}

func (s *Server) quitJob(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.QuitJob(r.Context())
	s.respond(w, r, res, err)
}

// plotParam reads the 1-based plot number players see and returns the index.
func plotParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "plot"))
	if err != nil {
		return 0, errBadRequest{err}
	}
	return n - 1, nil
}

type plantRequest struct {
	Seed string `json:"seed"`
}

func (s *Server) plant(w http.ResponseWriter, r *http.Request) {
	plot, err := plotParam(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req plantRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.Plant(r.Context(), plot, req.Seed)
	s.respond(w, r, res, err)
}

func (s *Server) harvest(w http.ResponseWriter, r *http.Request) {
	plot, err := plotParam(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.Harvest(r.Context(), plot)
	s.respond(w, r, res, err)
}

func (s *Server) equipTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.EquipTitle(r.Context(), req.Title)
	s.respond(w, r, res, err)
}

func (s *Server) rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.Rename(r.Context(), req.Name)
	s.respond(w, r, res, err)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	blob, err := s.engine.Export(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": s.engine.Config.Version,
		"blob":    blob,
	})
}

func (s *Server) importState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Blob string `json:"blob"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.engine.Import(r.Context(), req.Blob)
	s.respond(w, r, res, err)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Reset(r.Context())
	s.respond(w, r, res, err)
}

func (s *Server) saveNow(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Save(r.Context()); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
