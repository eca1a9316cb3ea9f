package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// UploadResult is returned by a successful upload.
type UploadResult struct {
	ObjectID           string `json:"object_id"`
	VerificationStatus string `json:"verification_status"`
}

// Upload streams a file through the ingest pipeline as a multipart/form-data
// request. email and passphrase are re-sent alongside the session token
// because the ingest handler re-derives credentials on every upload rather
// than trusting the session alone.
func (c *Client) Upload(email, passphrase, filename string, r io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("email", email); err != nil {
		return nil, fmt.Errorf("failed to write email field: %w", err)
	}
	if err := writer.WriteField("passphrase", passphrase); err != nil {
		return nil, fmt.Errorf("failed to write passphrase field: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to stream file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, "/api/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var result UploadResult
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListedFile mirrors the listing API's per-object record.
type ListedFile struct {
	ObjectID           string `json:"object_id"`
	OriginalFilename   string `json:"original_filename"`
	OriginalSize       int64  `json:"original_size"`
	EncryptedSize      int64  `json:"encrypted_size"`
	VerificationStatus string `json:"verification_status"`
	TimestampMs        int64  `json:"timestamp"`
}

// ListFiles returns every object owned by the session's principal.
func (c *Client) ListFiles() ([]ListedFile, error) {
	var files []ListedFile
	if err := c.get("/api/files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteResult is returned by a successful delete call.
type DeleteResult struct {
	ObjectID string `json:"object_id"`
	Found    bool   `json:"found"`
}

// DeleteFile removes the object identified by objectID and originalName.
func (c *Client) DeleteFile(objectID, originalName string) (*DeleteResult, error) {
	path := "/api/files?object_id=" + url.QueryEscape(objectID) + "&original_name=" + url.QueryEscape(originalName)
	var result DeleteResult
	if err := c.deleteQuery(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
