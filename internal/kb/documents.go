package kb

import (
	"context"
	"io"
)

// UploadFile uploads a local file as a new document. The file handle is
// opened, read once into the request body, and closed before any network
// activity.
func (c *Client) UploadFile(ctx context.Context, path string, opts UploadOptions) (*Document, error) {
	req, err := buildUploadFile(path, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// Upload uploads in-memory content under the given filename. It serves
// callers whose content never touched disk, such as HTTP front ends.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, opts UploadOptions) (*Document, error) {
	req, err := buildUpload(filename, content, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// UploadURL registers a remote URL as a new document. The service fetches
// the content itself; only the reference and an optional display name travel.
func (c *Client) UploadURL(ctx context.Context, rawurl, name string, opts UploadOptions) (*Document, error) {
	req, err := buildUploadURL(rawurl, name, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// UploadTable uploads structured rows together with their schema. Rows are
// validated against the schema before anything is sent.
func (c *Client) UploadTable(ctx context.Context, table Table, opts UploadOptions) (*Document, error) {
	req, err := buildUploadTable(table, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// Get retrieves a document by ID.
func (c *Client) Get(ctx context.Context, documentID string) (*Document, error) {
	req, err := buildGet(documentID)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// UpdateFile replaces a document's content with a local file.
func (c *Client) UpdateFile(ctx context.Context, documentID, path string, opts UploadOptions) (*Document, error) {
	req, err := buildUpdateFile(documentID, path, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// UpdateURL replaces a document's content from a URL.
func (c *Client) UpdateURL(ctx context.Context, documentID, rawurl, name string, opts UploadOptions) (*Document, error) {
	req, err := buildUpdateURL(documentID, rawurl, name, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

// Delete removes a document by ID.
func (c *Client) Delete(ctx context.Context, documentID string) error {
	req, err := buildDelete(documentID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}

// List returns one page of documents. Paging is plain limit/offset.
func (c *Client) List(ctx context.Context, limit, offset int) ([]Document, error) {
	req, err := buildList(limit, offset)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeDocumentList(body)
}
