package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sitedex/sitedex"
)

// Server exposes the pipeline over a JSON API:
//
//	POST /api/scrape        start a scrape session
//	GET  /api/sessions/{id} poll session status and progress
//	POST /api/embed         start an embed run for an artifact
//	GET  /api/search        semantic search over indexed chunks
type Server struct {
	orchestrator sitedex.Orchestrator
	sessions     sitedex.SessionService
	searcher     sitedex.Searcher
	logger       *slog.Logger
}

// NewServer creates a Server. searcher may be nil, in which case the search
// endpoint reports unavailable.
func NewServer(orchestrator sitedex.Orchestrator, sessions sitedex.SessionService, searcher sitedex.Searcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		orchestrator: orchestrator,
		sessions:     sessions,
		searcher:     searcher,
		logger:       logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scrape", s.handleCreateScrape)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/embed", s.handleCreateEmbed)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	return mux
}

// ListenAndServe serves the API on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("api listening", "addr", addr)
	return srv.ListenAndServe()
}

type scrapeResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func (s *Server) handleCreateScrape(w http.ResponseWriter, r *http.Request) {
	var req sitedex.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, sitedex.Errorf(sitedex.EINVALID, "invalid request body: %v", err))
		return
	}

	session, err := s.orchestrator.StartScrape(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, scrapeResponse{
		SessionID: session.ID,
		Status:    string(session.Status),
		Message:   "Scraping session created. Processing in background.",
	})
}

type sessionResponse struct {
	SessionID    string `json:"session_id"`
	Status       string `json:"status"`
	PagesScraped int    `json:"pages_scraped"`
	URL          string `json:"url"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session, err := s.sessions.FindSessionByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pages, err := s.sessions.CountPages(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:    session.ID,
		Status:       string(session.Status),
		PagesScraped: pages,
		URL:          session.URL,
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    session.UpdatedAt.Format(time.RFC3339),
		ErrorMessage: session.ErrorMessage,
	})
}

type embedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleCreateEmbed(w http.ResponseWriter, r *http.Request) {
	var sel sitedex.EmbedSelector
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		s.writeError(w, r, sitedex.Errorf(sitedex.EINVALID, "invalid request body: %v", err))
		return
	}

	filename, err := s.orchestrator.StartEmbed(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, embedResponse{
		Status:  "pending",
		Message: "Embedding task started for " + filename + ". Processing in background.",
	})
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Text     string  `json:"text"`
	PageName string  `json:"page_name"`
	PageURL  string  `json:"page_url"`
	Domain   string  `json:"domain"`
	Score    float32 `json:"score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		s.writeError(w, r, sitedex.Errorf(sitedex.EUNAVAILABLE, "search is not configured"))
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, r, sitedex.Errorf(sitedex.EINVALID, "query parameter q required"))
		return
	}

	opts := sitedex.SearchOptions{
		Collection: r.URL.Query().Get("collection"),
		Domain:     r.URL.Query().Get("domain"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			s.writeError(w, r, sitedex.Errorf(sitedex.EINVALID, "invalid limit %q", limit))
			return
		}
		opts.Limit = n
	}

	results, err := s.searcher.Search(r.Context(), query, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := searchResponse{Results: []searchResult{}}
	for _, res := range results {
		resp.Results = append(resp.Results, searchResult{
			Text:     res.Record.Text,
			PageName: res.Record.PageName,
			PageURL:  res.Record.PageURL,
			Domain:   res.Record.Domain,
			Score:    res.Score,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

// writeError maps application error codes to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := sitedex.ErrorCode(err)
	status := statusFromCode(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": sitedex.ErrorMessage(err)})
}

func statusFromCode(code string) int {
	switch code {
	case sitedex.EINVALID:
		return http.StatusBadRequest
	case sitedex.ENOTFOUND:
		return http.StatusNotFound
	case sitedex.ECONFLICT:
		return http.StatusConflict
	case sitedex.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
