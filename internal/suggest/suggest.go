// Package suggest derives chunk size and metadata suggestions for knowledge
// base uploads from lightweight content heuristics. Suggestions are advisory;
// nothing here touches the network.
package suggest

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Base chunk sizes per document type. Q&A content retrieves better in small
// chunks, technical prose and code in large ones.
var baseSizes = map[string]int{
	"faq":       600,
	"technical": 1200,
	"marketing": 800,
	"general":   1000,
	"code":      1400,
	"table":     700,
}

const defaultBaseSize = 1000

// ChunkSize recommends a chunk size for a document of the given type and
// content length in characters. The result always falls in [500, 1500].
// Unknown document types use the general base size.
func ChunkSize(contentLength int, docType string) int {
	base, ok := baseSizes[strings.ToLower(docType)]
	if !ok {
		base = defaultBaseSize
	}

	switch {
	case contentLength < 1000:
		return max(500, min(base-200, 700))
	case contentLength < 5000:
		return max(600, min(base-100, 900))
	case contentLength < 20000:
		return base
	case contentLength < 50000:
		return min(base+100, 1300)
	default:
		return min(base+200, 1500)
	}
}

// ContentLength measures how much text a file would contribute to the
// knowledge base. PDFs are measured by their extracted plain text; anything
// else, and PDFs whose text cannot be extracted, by size on disk.
func ContentLength(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if n, err := pdfTextLength(path); err == nil {
			return n, nil
		}
	}

	return int(info.Size()), nil
}

func pdfTextLength(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	total := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return 0, err
		}
		total += len(text)
	}
	if total == 0 {
		return 0, errors.New("no text extracted")
	}
	return total, nil
}

// ChunkSizeForFile recommends a chunk size for the file at path.
func ChunkSizeForFile(path, docType string) (int, error) {
	n, err := ContentLength(path)
	if err != nil {
		return 0, err
	}
	return ChunkSize(n, docType), nil
}

// MetadataForFile suggests metadata for a file upload based on its name and
// extension.
func MetadataForFile(path string) map[string]string {
	filename := filepath.Base(path)

	md := map[string]string{
		"source":   "file_upload",
		"filename": filename,
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc", ".md":
		md["category"] = "documentation"
	case ".txt":
		md["category"] = "text"
	case ".csv", ".json", ".xml":
		md["category"] = "data"
	default:
		md["category"] = "document"
	}

	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "faq"):
		md["type"] = "faq"
		md["category"] = "support"
	case strings.Contains(lower, "guide"), strings.Contains(lower, "manual"):
		md["type"] = "guide"
		md["category"] = "documentation"
	case strings.Contains(lower, "spec"), strings.Contains(lower, "technical"):
		md["type"] = "technical"
		md["category"] = "documentation"
	case strings.Contains(lower, "product"), strings.Contains(lower, "catalog"):
		md["type"] = "catalog"
		md["category"] = "products"
	}

	return md
}

// MetadataForURL suggests metadata for a URL upload based on its domain and
// path.
func MetadataForURL(rawURL string) map[string]string {
	md := map[string]string{
		"source":   "url",
		"category": "web_content",
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return md
	}
	md["domain"] = u.Host

	path := strings.ToLower(u.Path)
	switch {
	case strings.Contains(path, "/blog"), strings.Contains(path, "/article"):
		md["type"] = "blog"
		md["category"] = "content"
	case strings.Contains(path, "/docs"), strings.Contains(path, "/documentation"):
		md["type"] = "documentation"
		md["category"] = "docs"
	case strings.Contains(path, "/faq"), strings.Contains(path, "/help"):
		md["type"] = "faq"
		md["category"] = "support"
	case strings.Contains(path, "/api"):
		md["type"] = "api_reference"
		md["category"] = "technical"
	case strings.Contains(path, "/product"):
		md["type"] = "product_page"
		md["category"] = "products"
	}

	return md
}

// MetadataForTable suggests metadata for a table upload based on its name.
func MetadataForTable(name string) map[string]string {
	md := map[string]string{
		"source":   "table_upload",
		"category": "structured_data",
		"type":     "table",
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "product"), strings.Contains(lower, "catalog"):
		md["category"] = "products"
		md["type"] = "product_catalog"
	case strings.Contains(lower, "customer"), strings.Contains(lower, "user"):
		md["category"] = "users"
		md["type"] = "user_data"
	case strings.Contains(lower, "price"), strings.Contains(lower, "pricing"):
		md["category"] = "pricing"
		md["type"] = "pricing_table"
	case strings.Contains(lower, "faq"):
		md["category"] = "support"
		md["type"] = "faq_table"
	}

	return md
}
