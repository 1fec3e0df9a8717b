// Package api exposes listing extraction and the chart feed over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"condo-extractor/internal/cache"
	"condo-extractor/internal/crawler"
	"condo-extractor/internal/ioformats"
	"condo-extractor/internal/listing"
	"condo-extractor/internal/models"
)

const maxUploadBytes = 32 << 20

type Extractor interface {
	Extract(ctx context.Context, rawURL string) (models.ExtractResult, error)
}

type FeedBuilder interface {
	Build(ctx context.Context) ([]models.FeedDataPoint, error)
}

type Options struct {
	Extractor      Extractor
	Feed           FeedBuilder
	CacheDir       string
	Gatherer       prometheus.Gatherer
	Log            *zap.Logger
	RequestTimeout time.Duration
}

type Server struct {
	extractor Extractor
	feed      FeedBuilder
	cacheDir  string
	gatherer  prometheus.Gatherer
	log       *zap.Logger
	timeout   time.Duration
}

func New(o Options) *Server {
	s := &Server{
		extractor: o.Extractor,
		feed:      o.Feed,
		cacheDir:  o.CacheDir,
		gatherer:  o.Gatherer,
		log:       o.Log,
		timeout:   o.RequestTimeout,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	return s
}

// Handler returns the router with request logging applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/extract/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/extract/batch", s.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/property-data", s.handleFeed).Methods(http.MethodGet)
	r.HandleFunc("/data/{filename}", s.handleData).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	r.Use(requestID, logRequest(s.log))
	return r
}

type extractReq struct {
	URL string `json:"url"`
}

type batchReq struct {
	URLs []string `json:"urls"`
}

type extractResp struct {
	Success   bool                 `json:"success"`
	Data      models.ListingRecord `json:"data"`
	FromCache bool                 `json:"fromCache"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /extract  url=https://... (form) or {"url": "https://..."}
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	rawURL, err := requestURL(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid payload"})
		return
	}
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "URL is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		code, msg := classify(err)
		writeJSON(w, code, errorBody{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, extractResp{Success: true, Data: res.Record, FromCache: res.FromCache})
}

// POST /extract/upload (multipart file=...) -> NDJSON stream, one line per input
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "multipart parse error"})
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "file part 'file' required"})
		return
	}
	defer f.Close()

	inputs, err := ioformats.DecodeURLs(f, ioformats.FormatFromName(hdr.Filename))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	for _, in := range inputs {
		if r.Context().Err() != nil {
			return
		}
		line := s.extractOne(r.Context(), in)
		if err := ioformats.WriteNDJSON(w, []models.BatchLine{line}); err != nil {
			s.log.Warn("upload stream write failed", zap.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// POST /extract/batch {"urls": [...]} -> one line per input, in input order
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid payload"})
		return
	}
	if len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "urls is required"})
		return
	}

	lines := make([]models.BatchLine, 0, len(req.URLs))
	for _, in := range req.URLs {
		if r.Context().Err() != nil {
			break
		}
		lines = append(lines, s.extractOne(r.Context(), strings.TrimSpace(in)))
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) extractOne(ctx context.Context, input string) models.BatchLine {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rawURL := listing.BuildURL(input)
	res, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		return models.BatchLine{Input: input, Error: err.Error()}
	}
	return models.BatchLine{Input: input, Result: &res}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	points, err := s.feed.Build(r.Context())
	if err != nil {
		s.log.Error("feed build failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to read cached listings"})
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// GET /data/{filename} serves cached records and photos.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(mux.Vars(r)["filename"])
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	switch filepath.Ext(name) {
	case ".json", ".jpeg":
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cacheDir, name))
}

func requestURL(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req extractReq
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			return "", err
		}
		return strings.TrimSpace(req.URL), nil
	}
	// urlencoded and multipart forms
	return strings.TrimSpace(r.PostFormValue("url")), nil
}

// classify maps an extraction error to a status code and a client message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, listing.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid Centris URL. Please enter a valid Centris listing URL."
	case errors.Is(err, listing.ErrNoIdentifier):
		return http.StatusBadRequest, "Could not find a listing identifier in the URL."
	case errors.Is(err, crawler.ErrFetch):
		return http.StatusBadGateway, "Failed to extract data: " + err.Error()
	case errors.Is(err, cache.ErrCorrupt):
		return http.StatusInternalServerError, "Cached listing is unreadable: " + err.Error()
	default:
		return http.StatusInternalServerError, "Failed to extract data: " + err.Error()
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
