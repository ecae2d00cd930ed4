// Package splitclient клиент HTTP API разбиения сканов.
package splitclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/infrastructure/codec"
)

// ProcessPath путь эндпоинта разбиения
const ProcessPath = "/api/process/"

// StatusError сервис ответил кодом, отличным от 200
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("split failed with status: %d", e.Status)
	}
	return fmt.Sprintf("split failed with status %d: %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент сервиса по адресу baseURL (например http://localhost:8000)
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type regionDTO struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Image  string `json:"image"`
}

type responseDTO struct {
	RequestID string            `json:"request_id"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Policy    string            `json:"policy"`
	Regions   []regionDTO       `json:"regions"`
	Snapshots map[string]string `json:"snapshots"`
}

type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Split отправляет файл multipart-запросом и декодирует области и снимки.
func (c *Client) Split(ctx context.Context, filename string, imageData []byte, policy entity.Policy) (*entity.ProcessingResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if policy != "" {
		if err := writer.WriteField("policy", policy.String()); err != nil {
			return nil, fmt.Errorf("write policy field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ProcessPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Status: resp.StatusCode}
		var e errorDTO
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			statusErr.Code, statusErr.Message = e.Code, e.Message
		}
		return nil, statusErr
	}

	var dto responseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toResult(filename, dto)
}

// CheckHealth проверяет доступность сервиса
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("split service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func toResult(filename string, dto responseDTO) (*entity.ProcessingResult, error) {
	result := &entity.ProcessingResult{
		Width:     dto.Width,
		Height:    dto.Height,
		Policy:    entity.Policy(dto.Policy),
		Regions:   make([]entity.Region, 0, len(dto.Regions)),
		Snapshots: make(map[string]image.Image, len(dto.Snapshots)),
	}

	for i, r := range dto.Regions {
		img, err := decodePayload(r.Image)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		result.Regions = append(result.Regions, entity.Region{
			Box:    entity.BoundingBox{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
			Source: filename,
			Image:  img,
		})
	}
	for name, payload := range dto.Snapshots {
		img, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
		result.Snapshots[name] = img
	}
	return result, nil
}

func decodePayload(s string) (image.Image, error) {
	data, err := codec.DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data)
}

var _ port.RemoteSplitter = (*Client)(nil)
