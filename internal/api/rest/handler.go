// Package rest HTTP API разбиения сканов.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	app "scan-splitter/internal/application"
	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/codec"
)

// DefaultMaxUpload ограничение размера тела запроса по умолчанию
const DefaultMaxUpload = 20 << 20

type ctxKey struct{}

// errInvalidRequest запрос разобран, но параметры некорректны
type errInvalidRequest struct {
	msg string
}

func (e errInvalidRequest) Error() string { return e.msg }

type Handler struct {
	splitter  *app.SplitService
	pool      *SlotPool
	logger    *slog.Logger
	maxUpload int64
	quality   int
}

// Options настройки HTTP API
type Options struct {
	MaxUpload int64 // байт, <= 0 означает DefaultMaxUpload
	Quality   int   // качество JPEG в ответе
}

// NewHandler создаёт обработчик HTTP API
func NewHandler(splitter *app.SplitService, pool *SlotPool, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	return &Handler{
		splitter:  splitter,
		pool:      pool,
		logger:    logger,
		maxUpload: opts.MaxUpload,
		quality:   opts.Quality,
	}
}

// Router собирает маршруты API
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID, h.recoverer)
	r.HandleFunc("/api/process/", h.handleProcess).Methods(http.MethodPost)
	r.HandleFunc("/api/process", h.handleProcess).Methods(http.MethodPost)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
	return r
}

type regionResponse struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Image  string `json:"image"`
}

type processResponse struct {
	RequestID string            `json:"request_id"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Policy    string            `json:"policy"`
	Regions   []regionResponse  `json:"regions"`
	Snapshots map[string]string `json:"snapshots"`
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// processInput разобранный запрос на разбиение
type processInput struct {
	data     []byte
	filename string
	req      app.SplitRequest
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	requestID := RequestID(ctx)
	logger := h.logger.With("request_id", requestID)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	in, err := h.parseInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.split(ctx, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := processResponse{
		RequestID: requestID,
		Width:     result.Width,
		Height:    result.Height,
		Policy:    result.Policy.String(),
		Regions:   make([]regionResponse, 0, len(result.Regions)),
		Snapshots: make(map[string]string, len(result.Snapshots)),
	}
	for _, region := range result.Regions {
		payload, err := codec.EncodeBase64(region.Image, h.quality)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.Regions = append(resp.Regions, regionResponse{
			X:      region.Box.X,
			Y:      region.Box.Y,
			Width:  region.Box.Width,
			Height: region.Box.Height,
			Image:  payload,
		})
	}
	for name, snap := range result.Snapshots {
		payload, err := codec.EncodeBase64(snap, h.quality)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.Snapshots[name] = payload
	}

	logger.Info("request processed",
		"source", in.filename,
		"regions", len(resp.Regions),
		"duration", time.Since(start),
	)
	respondJSON(w, resp, http.StatusOK)
}

// split выполняет разбиение, заняв слот пула
func (h *Handler) split(ctx context.Context, in *processInput) (*entity.ProcessingResult, error) {
	if err := h.pool.Acquire(ctx); err != nil {
		return nil, err
	}
	defer h.pool.Release()

	return h.splitter.Split(ctx, in.data, in.req)
}

// parseInput достаёт изображение из multipart, JSON или сырого тела
func (h *Handler) parseInput(r *http.Request) (*processInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	in := &processInput{}
	var err error
	switch mediaType {
	case "multipart/form-data":
		err = h.parseMultipart(r, in)
	case "application/json":
		err = parseJSON(r, in)
	default:
		in.data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		return nil, err
	}
	if len(in.data) == 0 {
		return nil, entity.ErrNoImage
	}

	// параметры из query дополняют тело запроса
	q := r.URL.Query()
	if in.req.Policy == "" {
		in.req.Policy = entity.Policy(q.Get("policy"))
	}
	if in.req.Padding == nil {
		if in.req.Padding, err = parsePadding(q.Get("padding")); err != nil {
			return nil, err
		}
	}
	in.req.Source = in.filename
	return in, nil
}

func (h *Handler) parseMultipart(r *http.Request, in *processInput) error {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return err
	}

	for _, field := range []string{"image", "file"} {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		defer file.Close()

		if in.data, err = io.ReadAll(file); err != nil {
			return err
		}
		in.filename = header.Filename
		break
	}

	in.req.Policy = entity.Policy(r.PostFormValue("policy"))
	padding, err := parsePadding(r.PostFormValue("padding"))
	if err != nil {
		return err
	}
	in.req.Padding = padding
	return nil
}

func parseJSON(r *http.Request, in *processInput) error {
	var req struct {
		Image    string `json:"image"`
		Filename string `json:"filename"`
		Policy   string `json:"policy"`
		Padding  *int   `json:"padding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return err
	}

	data, err := codec.DecodeBase64(req.Image)
	if err != nil {
		if errors.Is(err, entity.ErrNoImage) {
			return err
		}
		return errInvalidRequest{msg: err.Error()}
	}
	in.data = data
	in.filename = req.Filename
	in.req.Policy = entity.Policy(req.Policy)
	in.req.Padding = req.Padding
	return nil
}

func parsePadding(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, errInvalidRequest{msg: fmt.Sprintf("padding must be an integer, got %q", s)}
	}
	return &v, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, h.pool.Metrics(), http.StatusOK)
}

// writeError переводит ошибку в код ответа. Внутренние подробности наружу не отдаются.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestID(r.Context())
	status, code, message := classify(err)

	attrs := []any{"request_id", requestID, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Warn("request rejected", attrs...)
	}

	respondJSON(w, errorResponse{Code: code, Message: message, RequestID: requestID}, status)
}

func classify(err error) (status int, code, message string) {
	var (
		maxBytes  *http.MaxBytesError
		invalid   errInvalidRequest
		configErr *entity.ConfigError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("request body exceeds %d bytes", maxBytes.Limit)
	case errors.Is(err, entity.ErrNoImage):
		return http.StatusBadRequest, "invalid_request", "No image provided"
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid_request", invalid.msg
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return http.StatusBadRequest, "invalid_request", "Malformed request body"
	case entity.IsDecodeError(err):
		return http.StatusBadRequest, "invalid_image", "Failed to decode image"
	case errors.As(err, &configErr):
		return http.StatusBadRequest, "invalid_config", configErr.Error()
	case errors.Is(err, ErrBusy), errors.Is(err, ErrPoolClosed):
		return http.StatusServiceUnavailable, "busy", "Server is busy, try again later"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled", "Request was cancelled"
	default:
		return http.StatusInternalServerError, "processing_error", "Internal server error"
	}
}

// requestID присваивает запросу идентификатор и кладёт его в контекст и заголовок ответа
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// recoverer отвечает 500 на панику обработчика
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("panic in handler",
					"request_id", RequestID(r.Context()),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				respondJSON(w, errorResponse{
					Code:      "processing_error",
					Message:   "Internal server error",
					RequestID: RequestID(r.Context()),
				}, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestID возвращает идентификатор запроса из контекста
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
