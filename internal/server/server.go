// Package server exposes a Ranker over HTTP: a form page, a JSON API, health
// and Prometheus metrics.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/kamusis/courserec/internal/chat"
	"github.com/kamusis/courserec/internal/search"
)

// ShutdownTimeout bounds graceful shutdown once Run's context ends.
const ShutdownTimeout = 5 * time.Second

// Outcome labels for courserec_recommend_requests_total.
const (
	outcomeSuccess     = "success"
	outcomeNoMatches   = "no_matches"
	outcomeInvalid     = "invalid_input"
	outcomeUnavailable = "unavailable"
)

//go:embed templates/index.html.tmpl
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html.tmpl"))

// Server is the HTTP shell around one Ranker.
type Server struct {
	addr      string
	ranker    *search.Ranker
	responder *chat.Responder
	router    *chi.Mux
}

// New wires the routes for ranker. addr is used by Run only.
func New(addr string, ranker *search.Ranker) *Server {
	s := &Server{addr: addr, ranker: ranker, router: chi.NewRouter()}
	topN := 0
	if ranker != nil {
		topN = ranker.Options().TopN
		if idx := ranker.Index(); idx != nil {
			catalogCourses.Set(float64(idx.Len()))
		}
	}
	s.responder = chat.NewResponder(s, topN)
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(accessLog)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/", s.handleAsk)
	s.router.Get("/api/recommend", s.handleRecommend)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("addr", s.addr).Msg("HTTP server started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

// Recommend runs the ranker and records metrics for the call.
func (s *Server) Recommend(query string, topN int) search.Result {
	start := time.Now()
	res := s.ranker.Recommend(query, topN)
	recommendDuration.Observe(time.Since(start).Seconds())
	recommendRequests.WithLabelValues(outcome(res)).Inc()
	return res
}

func outcome(res search.Result) string {
	switch {
	case res.OK():
		return outcomeSuccess
	case res.Error == search.ErrNotInitialized:
		return outcomeUnavailable
	case res.Error != "":
		return outcomeInvalid
	default:
		return outcomeNoMatches
	}
}

type page struct {
	Query  string
	Answer template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, page{})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := r.PostFormValue("user_input")
	renderPage(w, page{Query: q, Answer: s.responder.Ask(q)})
}

func renderPage(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, p); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
	}
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, search.Result{
				Error:           "invalid n: " + raw,
				Recommendations: []search.Recommendation{},
			})
			return
		}
		topN = n
	}

	res := s.Recommend(r.URL.Query().Get("q"), topN)
	status := http.StatusOK
	switch outcome(res) {
	case outcomeUnavailable:
		status = http.StatusServiceUnavailable
	case outcomeInvalid:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ranker == nil || s.ranker.Index() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	idx := s.ranker.Index()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"courses":    idx.Len(),
		"vocabulary": idx.Vectorizer.Size(),
		"created_at": idx.Manifest.CreatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
