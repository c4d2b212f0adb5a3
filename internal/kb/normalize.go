package kb

import (
	"encoding/json"
	"fmt"
)

// decodeDocument parses an upload, update, or get response. The service
// wraps the document in a `data` envelope; documentID is the one field every
// such response must carry.
func decodeDocument(body []byte) (*Document, error) {
	var env struct {
		Data *Document `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrMalformedResponse)
	}
	if env.Data.DocumentID == "" {
		return nil, fmt.Errorf("%w: missing documentID", ErrMalformedResponse)
	}
	return env.Data, nil
}

// decodeDocumentList parses a list response. An absent data array means an
// empty page, not an error.
func decodeDocumentList(body []byte) ([]Document, error) {
	var env struct {
		Data []Document `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Data == nil {
		return []Document{}, nil
	}
	return env.Data, nil
}

// decodeQueryResult parses a query response. Unlike document responses the
// result is not enveloped.
func decodeQueryResult(body []byte) (*QueryResult, error) {
	var res QueryResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if res.Chunks == nil {
		res.Chunks = []Chunk{}
	}
	return &res, nil
}
