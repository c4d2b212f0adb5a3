package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kalambet/vfkb/internal/kb"
)

func TestUploadOptionsFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addUploadFlags(cmd)

	cmd.Flags().Set("metadata", `{"department":"support","priority":1}`)
	cmd.Flags().Set("tags", " faq , support,billing")
	cmd.Flags().Set("overwrite", "true")
	cmd.Flags().Set("max-chunk-size", "800")

	opts, err := uploadOptionsFromFlags(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.Metadata["department"] != "support" {
		t.Errorf("metadata.department = %v, want support", opts.Metadata["department"])
	}
	if got, want := len(opts.Tags), 3; got != want {
		t.Fatalf("len(tags) = %d, want %d", got, want)
	}
	for i, want := range []string{"faq", "support", "billing"} {
		if opts.Tags[i] != want {
			t.Errorf("tags[%d] = %q, want %q", i, opts.Tags[i], want)
		}
	}
	if !opts.Overwrite {
		t.Error("overwrite = false, want true")
	}
	if opts.MaxChunkSize != 800 {
		t.Errorf("maxChunkSize = %d, want 800", opts.MaxChunkSize)
	}
}

func TestUploadOptionsFromFlags_Empty(t *testing.T) {
	cmd := &cobra.Command{}
	addUploadFlags(cmd)

	opts, err := uploadOptionsFromFlags(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.Metadata != nil {
		t.Errorf("metadata = %v, want nil", opts.Metadata)
	}
	if opts.Tags != nil {
		t.Errorf("tags = %v, want nil", opts.Tags)
	}
	if opts.Overwrite {
		t.Error("overwrite = true, want false")
	}
	if opts.MaxChunkSize != 0 {
		t.Errorf("maxChunkSize = %d, want 0", opts.MaxChunkSize)
	}
}

func TestUploadOptionsFromFlags_BadMetadata(t *testing.T) {
	cmd := &cobra.Command{}
	addUploadFlags(cmd)
	cmd.Flags().Set("metadata", "{not json")

	_, err := uploadOptionsFromFlags(cmd)
	if err == nil {
		t.Fatal("expected error for invalid metadata JSON")
	}
	if !strings.Contains(err.Error(), "--metadata") {
		t.Errorf("error = %q, want it to mention --metadata", err.Error())
	}
}

func TestConfirmDeletion(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"y\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"no\n", false},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := confirmDeletion(strings.NewReader(tt.input), &out, "doc-42")
		if got != tt.want {
			t.Errorf("confirmDeletion(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Are you sure you want to delete document doc-42? (yes/no): ") {
			t.Errorf("prompt = %q, want the confirmation question", out.String())
		}
	}
}

func TestWriteQueryResult(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()
	noColor = true

	result := &kb.QueryResult{
		Output: "Reset it from the account page.",
		Chunks: []kb.Chunk{
			{Content: "Go to account settings.", Score: 0.91},
			{Content: strings.Repeat("x", 250), Score: 0.42},
		},
	}

	var out bytes.Buffer
	writeQueryResult(&out, "How do I reset my password?", result, false)
	text := out.String()

	if !strings.Contains(text, strings.Repeat("=", 60)) {
		t.Error("expected a separator line")
	}
	if !strings.Contains(text, "Question: How do I reset my password?") {
		t.Error("expected the question line")
	}
	if !strings.Contains(text, "Answer:\nReset it from the account page.") {
		t.Errorf("expected the answer block, got:\n%s", text)
	}
	if !strings.Contains(text, "Found 2 relevant chunks:") {
		t.Error("expected the chunk count line")
	}
	if !strings.Contains(text, "[1] Score: 0.91") {
		t.Errorf("expected first chunk score, got:\n%s", text)
	}
	if !strings.Contains(text, strings.Repeat("x", 200)+"...") {
		t.Error("expected long content truncated at 200 chars")
	}
	if strings.Contains(text, strings.Repeat("x", 201)) {
		t.Error("long content was not truncated")
	}
}

func TestWriteQueryResult_Verbose(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()
	noColor = true

	result := &kb.QueryResult{
		Chunks: []kb.Chunk{{Content: strings.Repeat("x", 250), Score: 0.5}},
	}

	var out bytes.Buffer
	writeQueryResult(&out, "q", result, true)

	if !strings.Contains(out.String(), strings.Repeat("x", 250)) {
		t.Error("verbose output should keep full chunk content")
	}
	if strings.Contains(out.String(), "...") {
		t.Error("verbose output should not truncate")
	}
}

func TestWriteQueryResult_NoResults(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()
	noColor = true

	var out bytes.Buffer
	writeQueryResult(&out, "anything", &kb.QueryResult{}, false)

	if !strings.Contains(out.String(), "No results found.") {
		t.Errorf("output = %q, want 'No results found.'", out.String())
	}
}

func TestWriteDocumentDetails(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()
	noColor = true

	doc := &kb.Document{
		DocumentID: "doc-1",
		Name:       "handbook.pdf",
		Type:       "pdf",
		Status:     "SUCCESS",
		Tags:       []string{"hr", "policies"},
		Metadata:   map[string]any{"department": "people"},
	}

	var out bytes.Buffer
	if err := writeDocumentDetails(&out, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"Document details:",
		"ID: doc-1",
		"Name: handbook.pdf",
		"Type: pdf",
		"Status: SUCCESS",
		"Tags: hr, policies",
		`"department": "people"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestWriteDocumentList(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()
	noColor = true

	docs := []kb.Document{
		{DocumentID: "doc-1", Name: "faq.txt", Type: "text"},
		{DocumentID: "doc-2", Type: "url", Status: "PENDING"},
	}

	var out bytes.Buffer
	writeDocumentList(&out, docs)
	text := out.String()

	if !strings.Contains(text, "Documents (showing 2):") {
		t.Errorf("expected count header, got:\n%s", text)
	}
	if !strings.Contains(text, "faq.txt") {
		t.Error("expected first document name")
	}
	if !strings.Contains(text, "Unnamed") {
		t.Error("expected placeholder for a missing name")
	}
	if !strings.Contains(text, "Status: PENDING") {
		t.Error("expected status line for the second document")
	}
}

func TestWriteDocumentList_Empty(t *testing.T) {
	var out bytes.Buffer
	writeDocumentList(&out, nil)

	if !strings.Contains(out.String(), "No documents found.") {
		t.Errorf("output = %q, want 'No documents found.'", out.String())
	}
}

func TestQueryCommand_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"query"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing args")
	}
	if !strings.Contains(err.Error(), "arg") {
		t.Errorf("error = %q, want it to mention args", err.Error())
	}
}

func TestUploadTableCommand_MissingFlags(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"upload-table", "products"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error when data and schema files are missing")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestFormatFlagValidation(t *testing.T) {
	defer func() {
		rootCmd.PersistentFlags().Set("format", "text")
		rootCmd.SetArgs(nil)
	}()

	rootCmd.SetArgs([]string{"list", "--format", "yaml"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "--format") {
		t.Errorf("error = %q, want it to mention --format", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

// TestListCommand_JSONOutput runs the list command end to end against a fake
// service and checks --format json emits parseable JSON on stdout.
func TestListCommand_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"documentID":"d1","name":"guide.pdf","status":"SUCCESS"}]}`))
	}))
	defer srv.Close()

	oldNew := newKBClient
	newKBClient = func() (*kb.Client, error) {
		return kb.NewWithEndpoints("VF.DM.test.key", "proj-123", srv.URL, srv.URL), nil
	}
	defer func() { newKBClient = oldNew }()

	oldStdout := os.Stdout
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = pw

	rootCmd.SetArgs([]string{"list", "--format", "json"})
	execErr := rootCmd.Execute()

	pw.Close()
	os.Stdout = oldStdout
	out, _ := io.ReadAll(pr)

	rootCmd.PersistentFlags().Set("format", "text")
	rootCmd.SetArgs(nil)

	if execErr != nil {
		t.Fatalf("Execute: %v", execErr)
	}

	var docs []kb.Document
	if err := json.Unmarshal(out, &docs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(docs) != 1 || docs[0].DocumentID != "d1" {
		t.Errorf("docs = %+v", docs)
	}
}

// TestLoadConfig_FlagOverridesEnv checks the credential precedence order:
// flag over environment, environment over file defaults.
func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("VFKB_API_KEY", "env-key")
	t.Setenv("VFKB_PROJECT_ID", "env-project")

	oldKey, oldProject := apiKeyFlag, projectIDFlag
	defer func() { apiKeyFlag, projectIDFlag = oldKey, oldProject }()

	apiKeyFlag, projectIDFlag = "flag-key", ""
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Voiceflow.APIKey != "flag-key" {
		t.Errorf("APIKey = %q, want the flag value", cfg.Voiceflow.APIKey)
	}
	if cfg.Voiceflow.ProjectID != "env-project" {
		t.Errorf("ProjectID = %q, want the env value", cfg.Voiceflow.ProjectID)
	}
}

func TestNewKBClient_RequiresCredentials(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("VFKB_API_KEY", "")
	t.Setenv("VFKB_PROJECT_ID", "")

	oldKey, oldProject := apiKeyFlag, projectIDFlag
	defer func() { apiKeyFlag, projectIDFlag = oldKey, oldProject }()

	apiKeyFlag, projectIDFlag = "", ""
	_, err := newKBClient()
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("error = %q, want it to mention the API key", err.Error())
	}

	apiKeyFlag = "VF.DM.test.key"
	_, err = newKBClient()
	if err == nil {
		t.Fatal("expected error without a project ID")
	}
	if !strings.Contains(err.Error(), "project ID") {
		t.Errorf("error = %q, want it to mention the project ID", err.Error())
	}

	projectIDFlag = "proj-123"
	client, err := newKBClient()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client")
	}
}
