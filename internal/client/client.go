package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insightdelivered/expense-insight/internal/models"
)

// GenericError is shown when the service gives no usable "detail".
const GenericError = "Failed to analyze file"

// FileField is the multipart part name the service reads the statement from.
const FileField = "file"

// Client talks to the external analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the service at baseURL (scheme://host[:port]).
// A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UploadURL is the endpoint the statement is posted to.
func (c *Client) UploadURL() string {
	return c.baseURL + "/upload"
}

// Analyze posts the file and reports the outcome. Transport and service
// failures come back as an OutcomeFailure, never as a Go error.
func (c *Client) Analyze(ctx context.Context, file models.UploadedFile) models.Outcome {
	body, contentType, err := encodeFile(file)
	if err != nil {
		log.Errorf("encode upload %s: %v", file.Name, err)
		return models.Failure(0, GenericError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL(), body)
	if err != nil {
		log.Errorf("build upload request: %v", err)
		return models.Failure(0, GenericError)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warnf("upload %s failed: %v", file.Name, err)
		return models.Failure(0, GenericError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warnf("read response for %s: %v", file.Name, err)
		return models.Failure(resp.StatusCode, GenericError)
	}
	log.Infof("upload %s: status %d in %s", file.Name, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	return decodeResponse(resp.StatusCode, data)
}

func encodeFile(file models.UploadedFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(FileField, file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func decodeResponse(status int, data []byte) models.Outcome {
	if status < 200 || status > 299 {
		return models.Failure(status, ErrorDetail(data))
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Warnf("decode analysis result: %v", err)
		return models.Failure(status, GenericError)
	}
	if result.Transactions == nil {
		result.Transactions = []models.Transaction{}
	}
	if result.Anomalies == nil {
		result.Anomalies = []models.Transaction{}
	}
	return models.Success(result)
}

// ErrorDetail extracts the service's "detail" string from an error body,
// falling back to GenericError.
func ErrorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return GenericError
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil || detail == "" {
		return GenericError
	}
	return detail
}
