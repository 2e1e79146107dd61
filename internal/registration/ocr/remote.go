package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// RemoteEngine sends images to an external OCR microservice over HTTP.
type RemoteEngine struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteEngine creates an engine that calls the given OCR service URL.
func NewRemoteEngine(baseURL string) *RemoteEngine {
	return &RemoteEngine{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // OCR inference on large scans is slow
		},
	}
}

func (e *RemoteEngine) Name() string { return "remote" }

func (e *RemoteEngine) Recognize(ctx context.Context, image []byte) ([]string, error) {
	if e.baseURL == "" {
		return nil, ErrEngineUnavailable
	}
	if !IsImageData(image) {
		return nil, fmt.Errorf("remote: data is not a JPEG or PNG image")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "document.bin")
	if err != nil {
		return nil, fmt.Errorf("remote: create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("remote: write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("remote: close multipart writer: %w", err)
	}

	url := e.baseURL + "/api/v1/recognize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: ocr service request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: ocr service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var recognized recognizeResponse
	if err := json.Unmarshal(respBody, &recognized); err != nil {
		return nil, fmt.Errorf("remote: parse response: %w", err)
	}

	lines := recognized.Lines
	if len(lines) == 0 && recognized.Text != "" {
		lines = SplitLines(recognized.Text)
	}
	return lines, nil
}

// recognizeResponse mirrors the OCR service's response shape; services
// return either pre-split lines or one text block.
type recognizeResponse struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}
