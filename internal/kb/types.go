package kb

// Document describes a knowledge base document as reported by the service.
// The service owns every field; the client only references documents by ID.
type Document struct {
	DocumentID string         `json:"documentID"`
	Name       string         `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	Status     string         `json:"status,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Chunk is one retrieved passage with its relevance score.
type Chunk struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// QueryResult is the normalized answer to a knowledge base query. Output is
// the synthesized answer and is empty when synthesis is disabled or the
// service found nothing to say.
type QueryResult struct {
	Output string  `json:"output,omitempty"`
	Chunks []Chunk `json:"chunks"`
}

// TableField declares one column of a table document.
type TableField struct {
	Type       string `json:"type"`
	Searchable bool   `json:"searchable,omitempty"`
}

// TableSchema maps column names to their declarations. Field names are
// unique by construction.
type TableSchema map[string]TableField

// Table is a structured-data document to upload. Every row must supply a
// value for each schema field and may not carry keys outside the schema.
type Table struct {
	Name   string
	Schema TableSchema
	Rows   []map[string]any
}

// UploadOptions carries the optional parameters accepted by upload and
// update operations. The zero value sends none of them, leaving the service
// defaults in charge.
type UploadOptions struct {
	// Metadata is attached to the document and drives query-time filtering.
	Metadata map[string]any
	// Tags is the legacy labeling mechanism, still accepted by the service.
	Tags []string
	// Overwrite replaces an existing document with the same name.
	Overwrite bool
	// MaxChunkSize caps the chunk size used during service-side indexing.
	// Values <= 0 are not transmitted.
	MaxChunkSize int
}
