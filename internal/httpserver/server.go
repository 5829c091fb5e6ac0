// internal/httpserver/server.go
//
// HTTP wiring for the guessing game service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/words".
//   - Game endpoints: POST /game/new, POST /game/guess, GET /game/{id},
//     POST /game/daily.
//   - Stats endpoint: GET /stats for the calling player.
//   - Anonymous player cookie so stats and history survive across games
//     without accounts.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the cookie works).
//   - Error kinds from the core map to stable JSON error codes; none of
//     them crash the request.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/lexiguess/guessd/internal/daily"
	"github.com/lexiguess/guessd/internal/game"
	"github.com/lexiguess/guessd/internal/metrics"
	"github.com/lexiguess/guessd/internal/stats"
	"github.com/lexiguess/guessd/internal/store"
	"github.com/lexiguess/guessd/internal/words"
)

const playerCookieName = "guessd_player"

// Options carries the tunables the server needs from config.
type Options struct {
	WordLength  int
	MaxAttempts int
	CORSOrigin  string
	DailySalt   string

	// StrictWords rejects guesses that are absent from the vocabulary
	// before they reach the engine. Off by default: the engine itself
	// only checks shape, not dictionary membership.
	StrictWords bool
}

// Server bundles router, session store, stats aggregator, and vocabulary.
type Server struct {
	r       *chi.Mux
	store   *store.SessionStore
	stats   *stats.Aggregator
	vocab   *words.Vocabulary
	opts    Options
	started time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st *store.SessionStore, agg *stats.Aggregator, vocab *words.Vocabulary, opts Options) *Server {
	if opts.WordLength <= 0 {
		opts.WordLength = game.DefaultWordLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = game.DefaultMaxAttempts
	}
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		stats:   agg,
		vocab:   vocab,
		opts:    opts,
		started: time.Now(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsSingleOrigin(opts.CORSOrigin))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "guessd",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "GET /game/{id}", "POST /game/daily", "GET /stats"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"uptime": time.Since(s.started).Round(time.Second).String(),
		})
	})
	s.r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"words": s.vocab.Len()})
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.Post("/game/guess", s.handleGuess)
	s.r.Get("/game/{id}", s.handleGameState)
	s.r.Post("/game/daily", s.handleDailyGame)
	s.r.Get("/stats", s.handleStats)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsSingleOrigin enables credentialed CORS for one configured origin.
func corsSingleOrigin(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	WordLength  int    `json:"wordLength"`
	MaxAttempts int    `json:"maxAttempts"`
	Answer      string `json:"answer"` // optional fixed answer (testing)
}
type newGameRes struct {
	GameID      string `json:"gameId"`
	WordLength  int    `json:"wordLength"`
	MaxAttempts int    `json:"maxAttempts"`
}

// handleNewGame creates a session; word length and attempt budget fall back
// to the configured defaults.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.WordLength <= 0 {
		req.WordLength = s.opts.WordLength
	}
	if req.MaxAttempts <= 0 {
		req.MaxAttempts = s.opts.MaxAttempts
	}

	s.ensurePlayerID(w, r)

	var sess *game.Session
	if req.Answer != "" {
		// A fixed answer becomes the target verbatim, so it must satisfy
		// the same shape rule as guesses before it reaches the engine.
		answer := strings.ToUpper(strings.TrimSpace(req.Answer))
		if !game.ValidWord(answer) {
			writeError(w, http.StatusBadRequest, "invalid_format")
			return
		}
		sess = s.store.CreateWithTarget(r.Context(), answer, req.MaxAttempts)
	} else {
		sess = s.store.Create(r.Context(), req.WordLength, req.MaxAttempts)
	}

	v := sess.View()
	writeJSON(w, http.StatusOK, newGameRes{
		GameID:      v.ID,
		WordLength:  len(v.Target),
		MaxAttempts: v.MaxAttempts,
	})
}

// handleDailyGame creates a session around today's deterministic word, so
// every caller races the same target.
func (s *Server) handleDailyGame(w http.ResponseWriter, r *http.Request) {
	s.ensurePlayerID(w, r)

	pool := s.vocab.Entries()
	target := pool[daily.WordIndex(time.Now(), s.opts.DailySalt, len(pool))]
	sess := s.store.CreateWithTarget(r.Context(), target, s.opts.MaxAttempts)

	v := sess.View()
	writeJSON(w, http.StatusOK, map[string]any{
		"gameId":      v.ID,
		"date":        daily.DateKey(time.Now()),
		"wordLength":  len(v.Target),
		"maxAttempts": v.MaxAttempts,
	})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// handleGuess applies one guess and maps core error kinds to stable codes.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	playerID := s.ensurePlayerID(w, r)

	// Optional dictionary gate. Only well-shaped guesses are checked here;
	// malformed ones fall through so the engine reports invalid_format.
	if s.opts.StrictWords {
		guess := strings.ToUpper(strings.TrimSpace(req.Guess))
		if game.ValidWord(guess) && !s.vocab.Contains(guess) {
			writeError(w, http.StatusBadRequest, "unknown_word")
			return
		}
	}

	res, err := s.store.ApplyGuess(r.Context(), req.GameID, playerID, req.Guess)
	if err != nil {
		s.writeGuessError(w, r, req.GameID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeGuessError translates store/session errors into HTTP responses.
// Finished/exhausted responses carry the session's current status.
func (s *Server) writeGuessError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format")
	case errors.Is(err, game.ErrGameFinished), errors.Is(err, game.ErrAttemptsExhausted):
		code := "game_finished"
		if errors.Is(err, game.ErrAttemptsExhausted) {
			code = "attempts_exhausted"
		}
		status := game.Status("")
		if sess, gerr := s.store.Get(r.Context(), id); gerr == nil {
			status = sess.CurrentStatus()
		}
		writeJSON(w, http.StatusConflict, map[string]any{"error": code, "status": status})
	default:
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

type gameStateRes struct {
	GameID      string           `json:"gameId"`
	WordLength  int              `json:"wordLength"`
	MaxAttempts int              `json:"maxAttempts"`
	Guesses     []string         `json:"guesses"`
	Verdicts    [][]game.Verdict `json:"verdicts"`
	Status      game.Status      `json:"status"`
	Word        string           `json:"word,omitempty"` // terminal only
	CreatedAt   string           `json:"createdAt"`
}

// handleGameState renders a session without leaking the target mid-game.
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	v := sess.View()
	res := gameStateRes{
		GameID:      v.ID,
		WordLength:  len(v.Target),
		MaxAttempts: v.MaxAttempts,
		Guesses:     v.Guesses,
		Verdicts:    v.Verdicts,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
	if v.Status.Terminal() {
		res.Word = v.Target
	}
	writeJSON(w, http.StatusOK, res)
}

// ------------------------------ STATS --------------------------------------

// handleStats returns the calling player's cumulative counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	playerID := s.ensurePlayerID(w, r)
	ps := s.stats.Stats(r.Context(), playerID)
	writeJSON(w, http.StatusOK, ps)
}

// --------------------------- player identity -------------------------------

// ensurePlayerID returns the caller's anonymous player cookie, setting a new
// one when absent. This is identity plumbing, not authentication.
func (s *Server) ensurePlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
