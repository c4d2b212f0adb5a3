package kb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// hostKind selects which of the two service hosts a request targets.
// Document management and querying are served from separate hosts.
type hostKind int

const (
	hostDocs hostKind = iota
	hostQuery
)

const docsPath = "/v1/knowledge-base/docs"

// request is a fully assembled API request awaiting transport. Builders
// produce it without touching the network; local file reads happen here so
// handles never outlive assembly.
type request struct {
	method      string
	host        hostKind
	path        string
	query       url.Values
	contentType string
	body        []byte
}

// uploadParams translates UploadOptions into query parameters. Overwrite is
// only transmitted when set so the service default stays in charge.
func uploadParams(opts UploadOptions) url.Values {
	q := url.Values{}
	if opts.Overwrite {
		q.Set("overwrite", "true")
	}
	if opts.MaxChunkSize > 0 {
		q.Set("maxChunkSize", strconv.Itoa(opts.MaxChunkSize))
	}
	if len(q) == 0 {
		return nil
	}
	return q
}

// multipartBody assembles the form for file upload and update requests: a
// `file` part with the content plus optional `metadata` and `tags` fields
// carrying JSON strings.
func multipartBody(filename string, content io.Reader, opts UploadOptions) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", ErrLocalFile, filename, err)
	}

	if opts.Metadata != nil {
		b, err := json.Marshal(opts.Metadata)
		if err != nil {
			return nil, "", fmt.Errorf("%w: metadata is not serializable: %v", ErrValidation, err)
		}
		if err := w.WriteField("metadata", string(b)); err != nil {
			return nil, "", fmt.Errorf("writing metadata field: %w", err)
		}
	}
	if len(opts.Tags) > 0 {
		b, _ := json.Marshal(opts.Tags)
		if err := w.WriteField("tags", string(b)); err != nil {
			return nil, "", fmt.Errorf("writing tags field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func buildUpload(filename string, content io.Reader, opts UploadOptions) (*request, error) {
	body, ctype, err := multipartBody(filename, content, opts)
	if err != nil {
		return nil, err
	}
	return &request{
		method:      http.MethodPost,
		host:        hostDocs,
		path:        docsPath + "/upload",
		query:       uploadParams(opts),
		contentType: ctype,
		body:        body,
	}, nil
}

func buildUploadFile(path string, opts UploadOptions) (*request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalFile, err)
	}
	defer f.Close()
	return buildUpload(filepath.Base(path), f, opts)
}

// urlData is the `data` object of a URL upload. The service fetches the
// content itself; only the reference travels.
type urlData struct {
	Type     string         `json:"type"`
	URL      string         `json:"url"`
	Name     string         `json:"name,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
}

func buildUploadURL(rawurl, name string, opts UploadOptions) (*request, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %v", ErrValidation, rawurl, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q: expected an absolute http(s) url", ErrValidation, rawurl)
	}

	payload := struct {
		Data urlData `json:"data"`
	}{Data: urlData{
		Type:     "url",
		URL:      rawurl,
		Name:     name,
		Metadata: opts.Metadata,
		Tags:     opts.Tags,
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata is not serializable: %v", ErrValidation, err)
	}

	return &request{
		method:      http.MethodPost,
		host:        hostDocs,
		path:        docsPath + "/upload",
		query:       uploadParams(opts),
		contentType: contentTypeJSON,
		body:        body,
	}, nil
}

// tableData is the `data` object of a table upload. The schema travels as a
// fields map plus the list of searchable field names.
type tableData struct {
	Name     string           `json:"name"`
	Schema   tableSchema      `json:"schema"`
	Items    []map[string]any `json:"items"`
	Metadata map[string]any   `json:"metadata,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
}

type tableSchema struct {
	Fields           map[string]tableField `json:"fields"`
	SearchableFields []string              `json:"searchableFields"`
}

type tableField struct {
	Type string `json:"type"`
}

func buildUploadTable(table Table, opts UploadOptions) (*request, error) {
	if table.Name == "" {
		return nil, fmt.Errorf("%w: table name is required", ErrValidation)
	}
	if len(table.Schema) == 0 {
		return nil, fmt.Errorf("%w: table schema is empty", ErrValidation)
	}

	fields := make(map[string]tableField, len(table.Schema))
	searchable := []string{}
	for name, field := range table.Schema {
		if field.Type == "" {
			return nil, fmt.Errorf("%w: schema field %q has no type", ErrValidation, name)
		}
		fields[name] = tableField{Type: field.Type}
		if field.Searchable {
			searchable = append(searchable, name)
		}
	}
	// Map iteration order is randomized; keep the wire output deterministic.
	sort.Strings(searchable)

	for i, row := range table.Rows {
		for key := range row {
			if _, ok := table.Schema[key]; !ok {
				return nil, fmt.Errorf("%w: row %d has key %q not declared in schema", ErrSchemaMismatch, i, key)
			}
		}
		for name := range table.Schema {
			if _, ok := row[name]; !ok {
				return nil, fmt.Errorf("%w: row %d is missing schema field %q", ErrSchemaMismatch, i, name)
			}
		}
	}

	rows := table.Rows
	if rows == nil {
		rows = []map[string]any{}
	}

	payload := struct {
		Data tableData `json:"data"`
	}{Data: tableData{
		Name:     table.Name,
		Schema:   tableSchema{Fields: fields, SearchableFields: searchable},
		Items:    rows,
		Metadata: opts.Metadata,
		Tags:     opts.Tags,
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: table is not serializable: %v", ErrValidation, err)
	}

	return &request{
		method:      http.MethodPost,
		host:        hostDocs,
		path:        docsPath + "/upload/table",
		query:       uploadParams(opts),
		contentType: contentTypeJSON,
		body:        body,
	}, nil
}

// queryBody is the wire shape of a query. Filters travel verbatim; the
// service is authoritative on the filter grammar.
type queryBody struct {
	Question    string         `json:"question"`
	ChunkLimit  int            `json:"chunkLimit"`
	Synthesis   bool           `json:"synthesis"`
	Temperature float64        `json:"temperature"`
	Filters     map[string]any `json:"filters,omitempty"`
}

func buildQuery(question string, opts QueryOptions) (*request, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}
	if opts.ChunkLimit <= 0 {
		return nil, fmt.Errorf("%w: chunk limit must be positive, got %d", ErrValidation, opts.ChunkLimit)
	}
	if opts.Temperature < 0 || opts.Temperature > 1 {
		return nil, fmt.Errorf("%w: temperature must be within [0, 1], got %g", ErrValidation, opts.Temperature)
	}

	body, err := json.Marshal(queryBody{
		Question:    question,
		ChunkLimit:  opts.ChunkLimit,
		Synthesis:   opts.Synthesis,
		Temperature: opts.Temperature,
		Filters:     opts.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: filter is not serializable: %v", ErrValidation, err)
	}

	return &request{
		method:      http.MethodPost,
		host:        hostQuery,
		path:        "/knowledge-base/query",
		contentType: contentTypeJSON,
		body:        body,
	}, nil
}

func buildGet(documentID string) (*request, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrValidation)
	}
	return &request{
		method: http.MethodGet,
		host:   hostDocs,
		path:   docsPath + "/" + url.PathEscape(documentID),
	}, nil
}

func buildDelete(documentID string) (*request, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrValidation)
	}
	return &request{
		method: http.MethodDelete,
		host:   hostDocs,
		path:   docsPath + "/" + url.PathEscape(documentID),
	}, nil
}

func buildList(limit, offset int) (*request, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative, got %d", ErrValidation, offset)
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return &request{
		method: http.MethodGet,
		host:   hostDocs,
		path:   docsPath,
		query:  q,
	}, nil
}

// buildUpdateFile reuses the upload assembly; only the method and path
// differ. Updates replace the document content in place.
func buildUpdateFile(documentID, path string, opts UploadOptions) (*request, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrValidation)
	}
	req, err := buildUploadFile(path, opts)
	if err != nil {
		return nil, err
	}
	req.method = http.MethodPut
	req.path = docsPath + "/" + url.PathEscape(documentID) + "/upload"
	return req, nil
}

func buildUpdateURL(documentID, rawurl, name string, opts UploadOptions) (*request, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", ErrValidation)
	}
	req, err := buildUploadURL(rawurl, name, opts)
	if err != nil {
		return nil, err
	}
	req.method = http.MethodPut
	req.path = docsPath + "/" + url.PathEscape(documentID) + "/upload"
	return req, nil
}
