package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
)

const maxImportBody = 1 << 16

// CatalogReader provides the catalog's read projections.
type CatalogReader interface {
	ListArtists(ctx context.Context, tag string) ([]models.ArtistSummary, error)
	ListArtistDetails(ctx context.Context) ([]models.ArtistDetail, error)
	ArtistDetail(ctx context.Context, id string) (*models.ArtistDetail, error)
	ListTags(ctx context.Context) ([]models.TagSummary, error)
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// ImportRequest is the body of POST /api/import.
type ImportRequest struct {
	Tag   string `json:"tag"`
	Limit int    `json:"limit"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CatalogHandler serves the catalog's read endpoints and the import trigger.
type CatalogHandler struct {
	catalog  CatalogReader
	importer tasks.Importer
	logger   *log.Logger
}

// NewCatalogHandler creates a [CatalogHandler]. A nil importer disables POST /api/import.
func NewCatalogHandler(catalog CatalogReader, importer tasks.Importer, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, importer: importer, logger: logger}
}

// Register adds the handler's routes to r.
func (h *CatalogHandler) Register(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(h.health))
	r.Handle(http.MethodGet, "/api/artists", http.HandlerFunc(h.listArtists))
	r.Handle(http.MethodGet, "/api/artists/complete", http.HandlerFunc(h.listArtistDetails))
	r.Handle(http.MethodGet, "/api/artists/{id}", http.HandlerFunc(h.artistDetail))
	r.Handle(http.MethodGet, "/api/tags", http.HandlerFunc(h.listTags))
	r.Handle(http.MethodGet, "/api/stats", http.HandlerFunc(h.stats))
	r.Handle(http.MethodPost, "/api/import", http.HandlerFunc(h.importTag))
}

// NewRouter builds a [BasicRouter] with recovery and request logging around the catalog routes.
func NewRouter(h *CatalogHandler, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RecoveryMiddleware(logger), LoggingMiddleware(logger))
	h.Register(r)
	return r
}

func (h *CatalogHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CatalogHandler) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.ListArtists(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

func (h *CatalogHandler) listArtistDetails(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.ListArtistDetails(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

func (h *CatalogHandler) artistDetail(w http.ResponseWriter, r *http.Request) {
	artist, err := h.catalog.ArtistDetail(r.Context(), r.PathValue("id"))
	if errors.Is(err, shared.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artist not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (h *CatalogHandler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *CatalogHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *CatalogHandler) importTag(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		writeError(w, http.StatusServiceUnavailable, shared.ErrServiceUnavailable.Error())
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxImportBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Tag = strings.TrimSpace(req.Tag)
	if req.Tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	result, err := h.importer.ImportArtistsByTag(r.Context(), nil, req.Tag, req.Limit)
	if errors.Is(err, shared.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("import failed", "tag", req.Tag, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
