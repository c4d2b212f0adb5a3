package kb

import "context"

// QueryOptions controls retrieval and synthesis for a single query.
type QueryOptions struct {
	ChunkLimit  int
	Synthesis   bool
	Temperature float64
	// Filter is a metadata filter expression ($eq, $ne, $in, $and, $or)
	// passed to the service verbatim. The service is authoritative on the
	// grammar; the client never interprets it.
	Filter map[string]any
}

// DefaultQueryOptions returns the service defaults for a query.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		ChunkLimit:  5,
		Synthesis:   true,
		Temperature: 0.1,
	}
}

// Query asks the knowledge base a question and returns the retrieved chunks
// with an optional synthesized answer.
func (c *Client) Query(ctx context.Context, question string, opts QueryOptions) (*QueryResult, error) {
	req, err := buildQuery(question, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeQueryResult(body)
}
