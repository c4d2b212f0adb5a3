package kb

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuery_SendsDefaults(t *testing.T) {
	ts := newTestService(t, map[string]string{
		"POST /knowledge-base/query": `{"output":"We are open 9-5.","chunks":[]}`,
	})

	res, err := ts.client().Query(ctx, "When are you open?", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Output != "We are open 9-5." {
		t.Errorf("Output = %q", res.Output)
	}

	var payload map[string]any
	if err := json.Unmarshal(ts.requests[0].Body, &payload); err != nil {
		t.Fatalf("sent body is not JSON: %v", err)
	}
	if payload["chunkLimit"] != float64(5) {
		t.Errorf("chunkLimit = %v, want 5", payload["chunkLimit"])
	}
	if payload["synthesis"] != true {
		t.Errorf("synthesis = %v, want true", payload["synthesis"])
	}
	if payload["temperature"] != 0.1 {
		t.Errorf("temperature = %v, want 0.1", payload["temperature"])
	}
}

func TestQuery_ValidationSendsNothing(t *testing.T) {
	ts := newTestService(t, nil)

	opts := DefaultQueryOptions()
	opts.ChunkLimit = 0
	if _, err := ts.client().Query(ctx, "hi", opts); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	if len(ts.requests) != 0 {
		t.Errorf("server saw %d requests, want 0", len(ts.requests))
	}
}

func TestQuery_ChunksWithinLimitAndScoreRange(t *testing.T) {
	ts := newTestService(t, map[string]string{
		"POST /knowledge-base/query": `{
			"output": "Open 9-5 on weekdays.",
			"chunks": [
				{"content":"Business hours: 9am to 5pm","score":0.93},
				{"content":"Weekend hours: closed","score":0.71},
				{"content":"Holiday schedule varies","score":0.42}
			]
		}`,
	})

	opts := DefaultQueryOptions()
	opts.ChunkLimit = 3
	res, err := ts.client().Query(ctx, "What are your business hours?", opts)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(res.Chunks) == 0 || len(res.Chunks) > 3 {
		t.Fatalf("got %d chunks, want between 1 and 3", len(res.Chunks))
	}
	for i, c := range res.Chunks {
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("chunks[%d].Score = %v, want within [0,1]", i, c.Score)
		}
		if c.Content == "" {
			t.Errorf("chunks[%d] has empty content", i)
		}
	}
	if res.Chunks[0].Score != 0.93 {
		t.Errorf("chunks[0].Score = %v, want 0.93 preserved exactly", res.Chunks[0].Score)
	}
}

func TestQuery_NoSynthesis(t *testing.T) {
	ts := newTestService(t, map[string]string{
		"POST /knowledge-base/query": `{"chunks":[{"content":"raw chunk","score":0.5}]}`,
	})

	opts := DefaultQueryOptions()
	opts.Synthesis = false
	res, err := ts.client().Query(ctx, "hours?", opts)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Output != "" {
		t.Errorf("Output = %q, want empty without synthesis", res.Output)
	}

	var payload map[string]any
	if err := json.Unmarshal(ts.requests[0].Body, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["synthesis"] != false {
		t.Errorf("synthesis = %v, want false", payload["synthesis"])
	}
}

func TestQuery_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chunks":"not an array"}`))
	}))
	defer srv.Close()

	c := NewWithEndpoints("key", "proj", srv.URL, srv.URL)
	_, err := c.Query(ctx, "hi", DefaultQueryOptions())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("got %v, want ErrMalformedResponse", err)
	}
}

func TestQuery_EmptyChunksIsNotError(t *testing.T) {
	ts := newTestService(t, map[string]string{
		"POST /knowledge-base/query": `{"output":""}`,
	})

	res, err := ts.client().Query(ctx, "anything?", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Chunks == nil || len(res.Chunks) != 0 {
		t.Errorf("Chunks = %v, want empty non-nil slice", res.Chunks)
	}
}
