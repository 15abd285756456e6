// Package server exposes the exporter over HTTP: dumps in, PMML out.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pmml-exporter/internal/common"
	"pmml-exporter/internal/export"
	"pmml-exporter/internal/model"
	"pmml-exporter/internal/publish"
	"pmml-exporter/internal/storage"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	headerExportID = "X-Export-Id"
	headerAdvisory = "X-Pmml-Advisory"
	contentXML     = "application/xml"
)

// Store is the part of the export history the server uses.
type Store interface {
	StoreExport(rec storage.ExportRecord) (string, error)
	GetExport(id string) (storage.ExportRecord, error)
	ListExports(modelName string, start, end time.Time) ([]storage.ExportRecord, error)
}

// Publisher deploys documents to a scoring engine.
type Publisher interface {
	Deploy(ctx context.Context, modelID string, document []byte) (*publish.Deployment, error)
}

// MetricsInterface defines the metrics the server reports itself.
type MetricsInterface interface {
	DocumentBytesObserve(float64)
	StoredExportsInc()
}

// ExportServer provides the HTTP API for exports
type ExportServer struct {
	exporter  *export.Exporter
	store     Store
	publisher Publisher
	metrics   MetricsInterface
	server    *http.Server
}

// ExportRequest is the body of POST /export.
type ExportRequest struct {
	Model       json.RawMessage `json:"model"`
	Transformer json.RawMessage `json:"transformer,omitempty"`
	Options     export.Options  `json:"options"`
	Publish     bool            `json:"publish,omitempty"`
}

// ExportSummary describes a stored export without its document.
type ExportSummary struct {
	ID         string    `json:"id"`
	ModelName  string    `json:"model_name"`
	Kind       string    `json:"kind"`
	Version    string    `json:"pmml_version"`
	CreatedAt  time.Time `json:"created_at"`
	Advisories []string  `json:"advisories,omitempty"`
	Published  bool      `json:"published"`
	Size       int       `json:"size"`
}

// New creates the export server. store, publisher and metrics may be nil.
func New(exporter *export.Exporter, store Store, publisher Publisher, metrics MetricsInterface, port int) *ExportServer {
	s := &ExportServer{
		exporter:  exporter,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the routing for all endpoints.
func (s *ExportServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/exports", s.handleList)
	mux.HandleFunc("/exports/{id}", s.handleGet)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start begins serving HTTP requests
func (s *ExportServer) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting export server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *ExportServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *ExportServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestSize)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Model) == 0 || bytes.Equal(req.Model, []byte("null")) {
		http.Error(w, "model cannot be empty", http.StatusBadRequest)
		return
	}
	if req.Publish && s.publisher == nil {
		http.Error(w, "no scoring engine configured", http.StatusServiceUnavailable)
		return
	}

	est, err := model.Load(bytes.NewReader(req.Model))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid model: %v", err), loadStatus(err))
		return
	}
	var tr model.Transformer
	if len(req.Transformer) > 0 && !bytes.Equal(req.Transformer, []byte("null")) {
		if tr, err = model.LoadTransformer(bytes.NewReader(req.Transformer)); err != nil {
			http.Error(w, fmt.Sprintf("invalid transformer: %v", err), loadStatus(err))
			return
		}
	}

	res, err := s.exporter.Export(est, tr, req.Options)
	if err != nil {
		http.Error(w, err.Error(), exportStatus(err))
		return
	}
	doc, err := res.Bytes()
	if err != nil {
		log.Error().Err(err).Msg("failed to render document")
		http.Error(w, "failed to render document", http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.DocumentBytesObserve(float64(len(doc)))
	}

	id := uuid.NewString()
	if req.Publish {
		modelID := req.Options.ModelName
		if modelID == "" {
			modelID = id
		}
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if _, err := s.publisher.Deploy(ctx, modelID, doc); err != nil {
			log.Error().Err(err).Str("model_id", modelID).Msg("publish failed")
			http.Error(w, fmt.Sprintf("publish failed: %v", err), http.StatusBadGateway)
			return
		}
	}

	advisories := make([]string, len(res.Advisories))
	for i, a := range res.Advisories {
		advisories[i] = a.String()
	}

	if s.store != nil {
		_, err := s.store.StoreExport(storage.ExportRecord{
			ID:         id,
			ModelName:  req.Options.ModelName,
			Kind:       est.Kind().String(),
			Version:    res.Document.Version,
			Advisories: advisories,
			Published:  req.Publish,
			Document:   doc,
		})
		if err != nil {
			// The document is still returned; only the history entry is lost.
			log.Error().Err(err).Str("export_id", id).Msg("failed to store export")
		} else {
			w.Header().Set(headerExportID, id)
			if s.metrics != nil {
				s.metrics.StoredExportsInc()
			}
		}
	}

	writeDocument(w, doc, advisories)
}

func (s *ExportServer) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "export history is disabled", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	rec, err := s.store.GetExport(id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "export not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("export_id", id).Msg("failed to read export")
		http.Error(w, "failed to read export", http.StatusInternalServerError)
		return
	}

	w.Header().Set(headerExportID, rec.ID)
	writeDocument(w, rec.Document, rec.Advisories)
}

// handleList answers GET /exports?model=<name>&from=<RFC3339>&to=<RFC3339>.
func (s *ExportServer) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "export history is disabled", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	from, err := parseTime(q.Get("from"), time.Unix(0, 0))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid from: %v", err), http.StatusBadRequest)
		return
	}
	to, err := parseTime(q.Get("to"), time.Now())
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid to: %v", err), http.StatusBadRequest)
		return
	}

	records, err := s.store.ListExports(q.Get("model"), from, to)
	if err != nil {
		log.Error().Err(err).Msg("failed to list exports")
		http.Error(w, "failed to list exports", http.StatusInternalServerError)
		return
	}

	summaries := make([]ExportSummary, len(records))
	for i, rec := range records {
		summaries[i] = ExportSummary{
			ID:         rec.ID,
			ModelName:  rec.ModelName,
			Kind:       rec.Kind,
			Version:    rec.Version,
			CreatedAt:  rec.CreatedAt,
			Advisories: rec.Advisories,
			Published:  rec.Published,
			Size:       len(rec.Document),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

func (s *ExportServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   common.Version,
		"history":   s.store != nil,
		"publisher": s.publisher != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func writeDocument(w http.ResponseWriter, doc []byte, advisories []string) {
	for _, a := range advisories {
		w.Header().Add(headerAdvisory, a)
	}
	w.Header().Set("Content-Type", contentXML)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func loadStatus(err error) int {
	if errors.Is(err, model.ErrUnknownModel) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func exportStatus(err error) int {
	switch {
	case errors.Is(err, export.ErrUnsupportedModel),
		errors.Is(err, export.ErrNotFitted),
		errors.Is(err, export.ErrUnsupportedTransformer),
		errors.Is(err, export.ErrMalformedModel):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func parseTime(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	return time.Parse(time.RFC3339, v)
}
