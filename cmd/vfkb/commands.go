package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/vfkb/internal/config"
	"github.com/kalambet/vfkb/internal/kb"
)

func addUploadFlags(cmd *cobra.Command) {
	cmd.Flags().String("metadata", "", "document metadata as a JSON object")
	cmd.Flags().String("tags", "", "comma-separated tags")
	cmd.Flags().Bool("overwrite", false, "replace an existing document with the same name")
	cmd.Flags().Int("max-chunk-size", 0, "maximum chunk size used during indexing")
}

func uploadOptionsFromFlags(cmd *cobra.Command) (kb.UploadOptions, error) {
	var opts kb.UploadOptions

	metadataStr, _ := cmd.Flags().GetString("metadata")
	if metadataStr != "" {
		if err := json.Unmarshal([]byte(metadataStr), &opts.Metadata); err != nil {
			return opts, fmt.Errorf("invalid --metadata JSON: %w", err)
		}
	}

	tagsStr, _ := cmd.Flags().GetString("tags")
	if tagsStr != "" {
		opts.Tags = strings.Split(tagsStr, ",")
		for i := range opts.Tags {
			opts.Tags[i] = strings.TrimSpace(opts.Tags[i])
		}
	}

	opts.Overwrite, _ = cmd.Flags().GetBool("overwrite")
	opts.MaxChunkSize, _ = cmd.Flags().GetInt("max-chunk-size")
	return opts, nil
}

func reportUpload(what string, doc *kb.Document) error {
	if outputFormat == "json" {
		return printJSON(doc)
	}
	printSuccess("%s uploaded successfully!", what)
	printStatus("Document ID", "%s", doc.DocumentID)
	if verbose {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("  Full response: %s\n", data)
	}
	return nil
}

// --- upload ---

var uploadFileCmd = &cobra.Command{
	Use:   "upload-file <file>",
	Short: "Upload a file to the knowledge base",
	Long: `Upload a local file as a knowledge base document.

Examples:
  vfkb upload-file ./handbook.pdf
  vfkb upload-file ./faq.txt --metadata '{"department":"support"}' --tags faq,support
  vfkb upload-file ./catalog.txt --overwrite --max-chunk-size 800`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := uploadOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newKBClient()
		if err != nil {
			return err
		}

		doc, err := client.UploadFile(cmd.Context(), args[0], opts)
		if err != nil {
			return fmt.Errorf("uploading file: %w", err)
		}

		return reportUpload("File", doc)
	},
}

var uploadURLCmd = &cobra.Command{
	Use:   "upload-url <url>",
	Short: "Add a web page to the knowledge base",
	Long: `Register a URL as a knowledge base document. The service fetches
and indexes the content itself.

Examples:
  vfkb upload-url https://example.com/docs/getting-started
  vfkb upload-url https://example.com/faq --name "Product FAQ" --tags faq`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		opts, err := uploadOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newKBClient()
		if err != nil {
			return err
		}

		doc, err := client.UploadURL(cmd.Context(), args[0], name, opts)
		if err != nil {
			return fmt.Errorf("uploading URL: %w", err)
		}

		return reportUpload("URL", doc)
	},
}

var uploadTableCmd = &cobra.Command{
	Use:   "upload-table <name>",
	Short: "Upload structured table data",
	Long: `Upload table rows with their schema as a knowledge base document.

The data file holds a JSON array of row objects; the schema file maps
field names to {"type": ..., "searchable": ...} declarations.

Example:
  vfkb upload-table products --data-file rows.json --schema-file schema.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataFile, _ := cmd.Flags().GetString("data-file")
		schemaFile, _ := cmd.Flags().GetString("schema-file")
		if dataFile == "" || schemaFile == "" {
			return fmt.Errorf("--data-file and --schema-file are required")
		}

		data, err := os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("reading data file: %w", err)
		}
		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			return fmt.Errorf("parsing data file: %w", err)
		}

		schemaData, err := os.ReadFile(schemaFile)
		if err != nil {
			return fmt.Errorf("reading schema file: %w", err)
		}
		var schema kb.TableSchema
		if err := json.Unmarshal(schemaData, &schema); err != nil {
			return fmt.Errorf("parsing schema file: %w", err)
		}

		opts, err := uploadOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newKBClient()
		if err != nil {
			return err
		}

		table := kb.Table{Name: args[0], Schema: schema, Rows: rows}
		doc, err := client.UploadTable(cmd.Context(), table, opts)
		if err != nil {
			return fmt.Errorf("uploading table: %w", err)
		}

		return reportUpload("Table", doc)
	},
}

func init() {
	addUploadFlags(uploadFileCmd)

	uploadURLCmd.Flags().String("name", "", "display name for the document")
	addUploadFlags(uploadURLCmd)

	uploadTableCmd.Flags().String("data-file", "", "JSON file with table rows")
	uploadTableCmd.Flags().String("schema-file", "", "JSON file with the table schema")
	addUploadFlags(uploadTableCmd)

	rootCmd.AddCommand(uploadFileCmd)
	rootCmd.AddCommand(uploadURLCmd)
	rootCmd.AddCommand(uploadTableCmd)
}

// --- query ---

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask the knowledge base a question",
	Long: `Ask the knowledge base a question and print the synthesized answer
with the retrieved chunks.

Examples:
  vfkb query "How do I reset my password?"
  vfkb query "pricing tiers" --limit 3 --no-synthesis
  vfkb query "refund policy" --metadata '{"department":{"$eq":"support"}}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")
		noSynthesis, _ := cmd.Flags().GetBool("no-synthesis")
		temperature, _ := cmd.Flags().GetFloat64("temperature")
		filterStr, _ := cmd.Flags().GetString("metadata")

		opts := kb.DefaultQueryOptions()
		opts.ChunkLimit = limit
		opts.Synthesis = !noSynthesis
		opts.Temperature = temperature
		if filterStr != "" {
			if err := json.Unmarshal([]byte(filterStr), &opts.Filter); err != nil {
				return fmt.Errorf("invalid --metadata JSON: %w", err)
			}
		}

		client, err := newKBClient()
		if err != nil {
			return err
		}

		result, err := client.Query(cmd.Context(), question, opts)
		if err != nil {
			return fmt.Errorf("querying knowledge base: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(result)
		}
		writeQueryResult(os.Stdout, question, result, verbose)
		return nil
	},
}

func writeQueryResult(w io.Writer, question string, result *kb.QueryResult, full bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Question: %s\n", question)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if result.Output != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", colorize(colorBold, "Answer:"), result.Output)
	}

	if len(result.Chunks) == 0 {
		if result.Output == "" {
			fmt.Fprintln(w, "\nNo results found.")
		}
		return
	}

	fmt.Fprintf(w, "\nFound %d relevant chunks:\n\n", len(result.Chunks))
	for i, chunk := range result.Chunks {
		fmt.Fprintf(w, "  [%d] Score: %g\n", i+1, chunk.Score)
		content := chunk.Content
		if len(content) > 200 && !full {
			content = content[:200] + "..."
		}
		fmt.Fprintf(w, "      %s\n\n", content)
	}
}

func init() {
	queryCmd.Flags().Int("limit", 5, "maximum number of chunks to return")
	queryCmd.Flags().Bool("no-synthesis", false, "disable answer synthesis")
	queryCmd.Flags().Float64("temperature", 0.1, "synthesis temperature")
	queryCmd.Flags().String("metadata", "", "metadata filter as a JSON object")
	rootCmd.AddCommand(queryCmd)
}

// --- get ---

var getCmd = &cobra.Command{
	Use:   "get <document-id>",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newKBClient()
		if err != nil {
			return err
		}

		doc, err := client.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting document: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(doc)
		}
		return writeDocumentDetails(os.Stdout, doc)
	},
}

func writeDocumentDetails(w io.Writer, doc *kb.Document) error {
	fmt.Fprintf(w, "\n%s\n", colorize(colorBold, "Document details:"))
	fmt.Fprintf(w, "  ID: %s\n", doc.DocumentID)
	fmt.Fprintf(w, "  Name: %s\n", doc.Name)
	fmt.Fprintf(w, "  Type: %s\n", doc.Type)
	fmt.Fprintf(w, "  Status: %s\n", doc.Status)
	if len(doc.Tags) > 0 {
		fmt.Fprintf(w, "  Tags: %s\n", strings.Join(doc.Tags, ", "))
	}
	if len(doc.Metadata) > 0 {
		data, err := json.MarshalIndent(doc.Metadata, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  Metadata: %s\n", data)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(getCmd)
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !confirmDeletion(os.Stdin, os.Stdout, id) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		client, err := newKBClient()
		if err != nil {
			return err
		}

		if err := client.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}

		printSuccess("Document %s deleted successfully!", id)
		return nil
	},
}

func confirmDeletion(in io.Reader, out io.Writer, documentID string) bool {
	fmt.Fprintf(out, "Are you sure you want to delete document %s? (yes/no): ", documentID)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}

func init() {
	deleteCmd.Flags().Bool("confirm", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

// --- update ---

var updateCmd = &cobra.Command{
	Use:   "update <document-id> [file]",
	Short: "Replace a document's content",
	Long: `Replace a document's content with a local file or a URL.

Examples:
  vfkb update 64f1a2b3c4 ./handbook-v2.pdf
  vfkb update 64f1a2b3c4 --url https://example.com/handbook`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		updateURL, _ := cmd.Flags().GetString("url")
		name, _ := cmd.Flags().GetString("name")

		if len(args) < 2 && updateURL == "" {
			return fmt.Errorf("a file argument or --url is required")
		}
		if len(args) == 2 && updateURL != "" {
			return fmt.Errorf("a file argument and --url are mutually exclusive")
		}

		opts, err := uploadOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newKBClient()
		if err != nil {
			return err
		}

		var doc *kb.Document
		if updateURL != "" {
			doc, err = client.UpdateURL(cmd.Context(), id, updateURL, name, opts)
		} else {
			doc, err = client.UpdateFile(cmd.Context(), id, args[1], opts)
		}
		if err != nil {
			return fmt.Errorf("updating document: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(doc)
		}
		printSuccess("Document %s updated successfully!", id)
		if verbose {
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("  Full response: %s\n", data)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().String("url", "", "URL to replace the document content with")
	updateCmd.Flags().String("name", "", "display name when updating from a URL")
	addUploadFlags(updateCmd)
	rootCmd.AddCommand(updateCmd)
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		client, err := newKBClient()
		if err != nil {
			return err
		}

		docs, err := client.List(cmd.Context(), limit, offset)
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(docs)
		}
		writeDocumentList(os.Stdout, docs)
		return nil
	},
}

func writeDocumentList(w io.Writer, docs []kb.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}

	fmt.Fprintf(w, "\nDocuments (showing %d):\n\n", len(docs))
	for _, doc := range docs {
		name := doc.Name
		if name == "" {
			name = "Unnamed"
		}
		fmt.Fprintf(w, "  %s\n", colorize(colorBold, name))
		fmt.Fprintf(w, "    ID: %s\n", doc.DocumentID)
		if doc.Type != "" {
			fmt.Fprintf(w, "    Type: %s\n", doc.Type)
		}
		if doc.Status != "" {
			fmt.Fprintf(w, "    Status: %s\n", doc.Status)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	listCmd.Flags().Int("limit", 50, "maximum number of documents to return")
	listCmd.Flags().Int("offset", 0, "pagination offset")
	rootCmd.AddCommand(listCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s", key)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}

		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}
