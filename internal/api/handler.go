package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kalambet/vfkb/internal/kb"
	"github.com/kalambet/vfkb/internal/suggest"
)

const maxJSONBodySize = 1 << 20    // 1MB
const maxUploadBodySize = 50 << 20 // 50MB, the service's own document ceiling

// Deps carries everything the HTTP handlers need.
type Deps struct {
	Client *kb.Client
}

// NewHandler returns the localhost REST front end over the knowledge base
// client.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Post("/api/query", handleQuery(deps))
	r.Get("/api/documents", handleListDocuments(deps))
	r.Get("/api/documents/{id}", handleGetDocument(deps))
	r.Delete("/api/documents/{id}", handleDeleteDocument(deps))
	r.Post("/api/documents/file", handleUploadFile(deps))
	r.Post("/api/documents/url", handleUploadURL(deps))
	r.Post("/api/documents/table", handleUploadTable(deps))
	r.Post("/api/suggest/metadata", handleSuggestMetadata)
	r.Post("/api/suggest/chunk-size", handleSuggestChunkSize)

	return r
}

// requestLogger tags every request with an ID and logs method, path, status
// and duration once the handler returns.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		slog.Info("http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type queryRequest struct {
	Question    string         `json:"question"`
	ChunkLimit  *int           `json:"chunkLimit"`
	Synthesis   *bool          `json:"synthesis"`
	Temperature *float64       `json:"temperature"`
	Filters     map[string]any `json:"filters"`
}

func handleQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
		defer r.Body.Close()

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		opts := kb.DefaultQueryOptions()
		if req.ChunkLimit != nil {
			opts.ChunkLimit = *req.ChunkLimit
		}
		if req.Synthesis != nil {
			opts.Synthesis = *req.Synthesis
		}
		if req.Temperature != nil {
			opts.Temperature = *req.Temperature
		}
		opts.Filter = req.Filters

		result, err := deps.Client.Query(r.Context(), req.Question, opts)
		if err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleListDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 50, 500)
		offset := parseIntParam(r, "offset", 0, 0)

		docs, err := deps.Client.List(r.Context(), limit, offset)
		if err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}
}

func handleGetDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := deps.Client.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

func handleDeleteDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Client.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

func handleUploadFile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		if err := r.ParseMultipartForm(maxUploadBodySize); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid multipart body: %v", err)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file part is required: %v", err)
			return
		}
		defer file.Close()

		opts, err := uploadOptionsFromForm(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		doc, err := deps.Client.Upload(r.Context(), header.Filename, file, opts)
		if err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

func uploadOptionsFromForm(r *http.Request) (kb.UploadOptions, error) {
	var opts kb.UploadOptions

	if v := r.FormValue("metadata"); v != "" {
		if err := json.Unmarshal([]byte(v), &opts.Metadata); err != nil {
			return opts, fmt.Errorf("invalid metadata JSON: %v", err)
		}
	}
	if v := r.FormValue("tags"); v != "" {
		if err := json.Unmarshal([]byte(v), &opts.Tags); err != nil {
			return opts, fmt.Errorf("invalid tags JSON: %v", err)
		}
	}
	if v := r.FormValue("overwrite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid overwrite value %q", v)
		}
		opts.Overwrite = b
	}
	if v := r.FormValue("maxChunkSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid maxChunkSize value %q", v)
		}
		opts.MaxChunkSize = n
	}

	return opts, nil
}

type uploadURLRequest struct {
	URL          string         `json:"url"`
	Name         string         `json:"name"`
	Metadata     map[string]any `json:"metadata"`
	Tags         []string       `json:"tags"`
	Overwrite    bool           `json:"overwrite"`
	MaxChunkSize int            `json:"maxChunkSize"`
}

func handleUploadURL(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
		defer r.Body.Close()

		var req uploadURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		opts := kb.UploadOptions{
			Metadata:     req.Metadata,
			Tags:         req.Tags,
			Overwrite:    req.Overwrite,
			MaxChunkSize: req.MaxChunkSize,
		}
		doc, err := deps.Client.UploadURL(r.Context(), req.URL, req.Name, opts)
		if err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

type uploadTableRequest struct {
	Name         string           `json:"name"`
	Schema       kb.TableSchema   `json:"schema"`
	Items        []map[string]any `json:"items"`
	Metadata     map[string]any   `json:"metadata"`
	Tags         []string         `json:"tags"`
	Overwrite    bool             `json:"overwrite"`
	MaxChunkSize int              `json:"maxChunkSize"`
}

func handleUploadTable(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		var req uploadTableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		table := kb.Table{
			Name:   req.Name,
			Schema: req.Schema,
			Rows:   req.Items,
		}
		opts := kb.UploadOptions{
			Metadata:     req.Metadata,
			Tags:         req.Tags,
			Overwrite:    req.Overwrite,
			MaxChunkSize: req.MaxChunkSize,
		}
		doc, err := deps.Client.UploadTable(r.Context(), table, opts)
		if err != nil {
			kbError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

type suggestMetadataRequest struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	TableName string `json:"tableName"`
}

func handleSuggestMetadata(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	defer r.Body.Close()

	var req suggestMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	var md map[string]string
	switch {
	case req.Filename != "":
		md = suggest.MetadataForFile(req.Filename)
	case req.URL != "":
		md = suggest.MetadataForURL(req.URL)
	case req.TableName != "":
		md = suggest.MetadataForTable(req.TableName)
	default:
		md = map[string]string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(md)
}

type suggestChunkSizeRequest struct {
	ContentLength int    `json:"contentLength"`
	DocumentType  string `json:"documentType"`
}

func handleSuggestChunkSize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	defer r.Body.Close()

	var req suggestChunkSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	if req.DocumentType == "" {
		req.DocumentType = "general"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"suggestedChunkSize": suggest.ChunkSize(req.ContentLength, req.DocumentType),
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
