package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kalambet/vfkb/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest chunk sizes and metadata for uploads",
}

var suggestChunkSizeCmd = &cobra.Command{
	Use:   "chunk-size",
	Short: "Suggest an indexing chunk size",
	Long: `Suggest a chunk size from the document type and content length.

Examples:
  vfkb suggest chunk-size --file ./handbook.pdf --type technical
  vfkb suggest chunk-size --length 12000 --type faq`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		length, _ := cmd.Flags().GetInt("length")
		docType, _ := cmd.Flags().GetString("type")

		if file != "" && cmd.Flags().Changed("length") {
			return fmt.Errorf("--file and --length are mutually exclusive")
		}

		if file != "" {
			n, err := suggest.ContentLength(file)
			if err != nil {
				return err
			}
			length = n
		}

		size := suggest.ChunkSize(length, docType)

		if outputFormat == "json" {
			return printJSON(map[string]any{
				"suggestedChunkSize": size,
				"documentType":       docType,
				"contentLength":      length,
			})
		}
		fmt.Println(size)
		return nil
	},
}

var suggestMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Suggest metadata for a document",
	Long: `Suggest metadata for an upload from its filename, URL, or table name.

Examples:
  vfkb suggest metadata --file ./product-faq.pdf
  vfkb suggest metadata --url https://example.com/blog/launch
  vfkb suggest metadata --table pricing_tiers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		rawURL, _ := cmd.Flags().GetString("url")
		table, _ := cmd.Flags().GetString("table")

		var meta map[string]string
		switch {
		case file != "":
			meta = suggest.MetadataForFile(file)
		case rawURL != "":
			meta = suggest.MetadataForURL(rawURL)
		case table != "":
			meta = suggest.MetadataForTable(table)
		default:
			return fmt.Errorf("one of --file, --url, or --table is required")
		}

		if outputFormat == "json" {
			return printJSON(meta)
		}

		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k), meta[k])
		}
		return nil
	},
}

func init() {
	suggestChunkSizeCmd.Flags().String("file", "", "measure content length from this file")
	suggestChunkSizeCmd.Flags().Int("length", 0, "content length in characters")
	suggestChunkSizeCmd.Flags().String("type", "general", "document type (faq, technical, marketing, general, code, table)")

	suggestMetadataCmd.Flags().String("file", "", "suggest metadata for a file upload")
	suggestMetadataCmd.Flags().String("url", "", "suggest metadata for a URL upload")
	suggestMetadataCmd.Flags().String("table", "", "suggest metadata for a table name")

	suggestCmd.AddCommand(suggestChunkSizeCmd)
	suggestCmd.AddCommand(suggestMetadataCmd)
	rootCmd.AddCommand(suggestCmd)
}
