package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"raksproperties/catalog"
	"raksproperties/logging"
	"raksproperties/models"
	"raksproperties/services"
	"raksproperties/storage"
)

// Reloader refreshes the live catalog in the background
type Reloader interface {
	Trigger()
}

// ReloadHistory lists past reload attempts
type ReloadHistory interface {
	RecentReloads(limit int) ([]storage.ReloadRun, error)
}

type Server struct {
	addr       string
	catalogs   *catalog.Store
	sourceName string
	search     *services.SearchService
	composer   *services.Composer
	assistant  *services.AssistantService
	external   *services.ExternalService
	chat       *services.ChatService
	reloader   Reloader
	history    ReloadHistory
}

// Deps are the services the HTTP surface exposes
type Deps struct {
	Catalogs   *catalog.Store
	SourceName string
	Search     *services.SearchService
	Composer   *services.Composer
	Assistant  *services.AssistantService
	External   *services.ExternalService
	Chat       *services.ChatService
	Reloader   Reloader
	History    ReloadHistory
}

func New(addr string, d Deps) *Server {
	return &Server{
		addr:       addr,
		catalogs:   d.Catalogs,
		sourceName: d.SourceName,
		search:     d.Search,
		composer:   d.Composer,
		assistant:  d.Assistant,
		external:   d.External,
		chat:       d.Chat,
		reloader:   d.Reloader,
		history:    d.History,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/compose", s.handleCompose)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/assistant", s.handleAssistant)
	mux.HandleFunc("GET /api/external", s.handleExternal)
	mux.HandleFunc("GET /api/market/{location}", s.handleMarket)
	mux.HandleFunc("GET /api/properties", s.handleProperties)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/reloads", s.handleReloads)
	return logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: http shutdown: %v", err)
		}
	}()

	log.Printf("HTTP API listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "source": s.sourceName}
	if c := s.catalogs.Current(); c != nil {
		resp["catalog"] = c.Fingerprint()
		resp["properties"] = len(c.Properties)
	} else {
		resp["status"] = "no catalog"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := s.search.Search(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": results})
}

type composeRequest struct {
	Query           string `json:"query"`
	IncludeExternal bool   `json:"include_external"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if services.IsBlank(req.Query) {
		writeError(w, http.StatusBadRequest, "query is empty")
		return
	}

	cat := s.catalogs.Current()
	results := services.Match(cat, req.Query)

	var external []models.SearchResult
	if req.IncludeExternal {
		data, err := s.external.Fetch(r.Context(), req.Query)
		if err != nil {
			log.Printf("Warning: external listings unavailable for compose: %v", err)
		} else {
			external = data.Results
		}
	}

	text, fallback := s.composer.ComposeSafe(cat, req.Query, results, external)
	writeJSON(w, http.StatusOK, map[string]any{
		"branch":   services.BranchFor(req.Query),
		"response": text,
		"fallback": fallback,
		"results":  nonNil(results),
	})
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	turn, ok := s.chat.Respond(r.Context(), nil, req.Text)
	if !ok {
		writeError(w, http.StatusBadRequest, "text is empty")
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if services.IsBlank(q) {
		writeError(w, http.StatusBadRequest, "q is empty")
		return
	}
	reply := s.assistant.Reply(r.Context(), q)
	writeJSON(w, http.StatusOK, map[string]any{
		"reply":       reply,
		"suggestions": services.Suggestions(q),
	})
}

func (s *Server) handleExternal(w http.ResponseWriter, r *http.Request) {
	data, err := s.external.Fetch(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	trend, ok := s.external.MarketComparison(location)
	if !ok {
		writeError(w, http.StatusNotFound, "no market data for "+location)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.DefaultPropertyFilter()
	if v := q.Get("location"); v != "" {
		f.Location = v
	}
	if v := q.Get("type"); v != "" {
		f.PropertyType = v
	}

	var err error
	if f.PriceMin, err = queryInt(q.Get("min_price"), f.PriceMin); err != nil {
		writeError(w, http.StatusBadRequest, "min_price: "+err.Error())
		return
	}
	if f.PriceMax, err = queryInt(q.Get("max_price"), f.PriceMax); err != nil {
		writeError(w, http.StatusBadRequest, "max_price: "+err.Error())
		return
	}
	bedrooms, err := queryInt(q.Get("bedrooms"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bedrooms: "+err.Error())
		return
	}
	f.MinBedrooms = int(bedrooms)

	var records []models.ListingRecord
	if c := s.catalogs.Current(); c != nil {
		records = f.Apply(c.Properties)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"properties":     nonNil(records),
		"active_filters": nonNil(f.ActiveFilters()),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeError(w, http.StatusNotImplemented, "reload not configured")
		return
	}
	s.reloader.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload scheduled"})
}

func (s *Server) handleReloads(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "reload history not kept for this source")
		return
	}
	limit, err := queryInt(r.URL.Query().Get("limit"), 20)
	if err != nil || limit == 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive number")
		return
	}
	runs, err := s.history.RecentReloads(int(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": nonNil(runs)})
}

func queryInt(raw string, def int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("not a whole number")
	}
	if v < 0 {
		return 0, errors.New("must not be negative")
	}
	return v, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !logging.DebugEnabled() {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}
