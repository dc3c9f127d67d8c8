package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/clientip"
	"github.com/edgecomet/faleproxy/internal/common/httputil"
	"github.com/edgecomet/faleproxy/internal/proxy/events"
	"github.com/edgecomet/faleproxy/internal/proxy/fetcher"
	"github.com/edgecomet/faleproxy/internal/proxy/metrics"
)

// maxRequestBodySize bounds POST /fetch bodies
const maxRequestBodySize = 64 * 1024

var (
	// ErrMissingURL is returned when the body carries no usable url field
	ErrMissingURL = errors.New("URL is required")

	errInvalidBody = errors.New("invalid request body")
)

// fetchResponse is the success body of POST /fetch
type fetchResponse struct {
	Success     bool   `json:"success"`
	Content     string `json:"content"`
	Title       string `json:"title"`
	OriginalURL string `json:"originalUrl"`
}

// requestError represents an error with HTTP status code and metrics category
type requestError struct {
	statusCode int
	message    string
	category   string
}

func (s *Server) processFetchRequest(ctx *fasthttp.RequestCtx, requestID string, logger *zap.Logger) {
	start := time.Now()
	cfg := s.configManager.GetConfig()

	s.metricsCollector.IncActiveRequests()
	defer s.metricsCollector.DecActiveRequests()

	info := events.RequestInfo{
		RequestID: requestID,
		ClientIP:  clientip.Extract(ctx, cfg.ClientIP.Headers),
		UserAgent: string(ctx.UserAgent()),
		StartedAt: start,
	}

	rawURL, err := extractURL(ctx)
	if err != nil {
		s.handleRequestError(ctx, info, events.Outcome{}, err, classifyError(err), logger)
		return
	}
	info.URL = rawURL
	logger = logger.With(zap.String("url", rawURL))
	logger.Info("Processing fetch request", zap.String("client_ip", info.ClientIP))

	result, err := s.processor.Process(rawURL, logger)
	if err != nil {
		out := events.Outcome{}
		var fetchErr *fetcher.FetchError
		if errors.As(err, &fetchErr) {
			out.OriginStatus = fetchErr.StatusCode
		}
		s.handleRequestError(ctx, info, out, err, classifyError(err), logger)
		return
	}

	httputil.JSON(ctx, fetchResponse{
		Success:     true,
		Content:     result.Content,
		Title:       result.Title,
		OriginalURL: result.OriginalURL,
	}, fasthttp.StatusOK)

	duration := time.Since(start)
	s.metricsCollector.RecordRequest(metrics.OutcomeSuccess, duration)

	logger.Info("Fetch request completed",
		zap.String("final_url", result.FinalURL),
		zap.Int("text_nodes", result.Stats.TextNodes),
		zap.Int("elements", result.Stats.Elements),
		zap.Int("size", len(result.Content)),
		zap.Duration("duration", duration))

	s.eventEmitter.Emit(events.BuildRequestEvent(info, events.Outcome{
		StatusCode:         fasthttp.StatusOK,
		FinalURL:           result.FinalURL,
		Title:              result.Title,
		PageSize:           len(result.Content),
		FetchSize:          result.FetchSize,
		FetchTime:          result.FetchDuration,
		OriginStatus:       result.OriginStatus,
		RewrittenTextNodes: result.Stats.TextNodes,
		RewrittenElements:  result.Stats.Elements,
	}, s.instanceID))
}

// handleRequestError writes the error body, logs, records metrics and emits an error event
func (s *Server) handleRequestError(ctx *fasthttp.RequestCtx, info events.RequestInfo, out events.Outcome, err error, reqErr *requestError, logger *zap.Logger) {
	if reqErr.category == events.ErrorTypeInternal {
		logger.Error("Request failed", zap.Error(err), zap.String("category", reqErr.category))
	} else {
		logger.Warn("Request failed", zap.Error(err), zap.String("category", reqErr.category))
	}
	httputil.JSONError(ctx, reqErr.message, reqErr.statusCode)

	s.metricsCollector.RecordRequest(metrics.OutcomeError, time.Since(info.StartedAt))
	s.metricsCollector.RecordError(reqErr.category)

	out.StatusCode = reqErr.statusCode
	out.ErrorType = reqErr.category
	out.ErrorMessage = reqErr.message
	s.eventEmitter.Emit(events.BuildRequestEvent(info, out, s.instanceID))
}

// classifyError maps an error to its response status, body and category
func classifyError(err error) *requestError {
	var invalidURL *fetcher.InvalidURLError
	var fetchErr *fetcher.FetchError

	switch {
	case errors.Is(err, ErrMissingURL):
		return &requestError{fasthttp.StatusBadRequest, "URL is required", events.ErrorTypeMissingURL}
	case errors.Is(err, errInvalidBody):
		return &requestError{fasthttp.StatusBadRequest, "Invalid request body", events.ErrorTypeInvalidBody}
	case errors.As(err, &invalidURL):
		// 500 rather than 400 is what existing clients expect
		return &requestError{fasthttp.StatusInternalServerError, "Invalid URL format", events.ErrorTypeInvalidURL}
	case errors.As(err, &fetchErr):
		return &requestError{
			fasthttp.StatusInternalServerError,
			"Failed to fetch content: " + fetchErr.Cause(),
			events.ErrorTypeFetch,
		}
	default:
		return &requestError{fasthttp.StatusInternalServerError, "Internal server error", events.ErrorTypeInternal}
	}
}

// extractURL reads the url field from a JSON or form-encoded body.
// Missing, null, empty, false and zero values all count as absent.
func extractURL(ctx *fasthttp.RequestCtx) (string, error) {
	contentType := ctx.Request.Header.ContentType()
	if i := bytes.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = bytes.ToLower(bytes.TrimSpace(contentType))

	switch {
	case bytes.Equal(contentType, []byte("application/x-www-form-urlencoded")):
		url := string(ctx.PostArgs().Peek("url"))
		if url == "" {
			return "", ErrMissingURL
		}
		return url, nil

	case bytes.Equal(contentType, []byte("application/json")) || bytes.HasSuffix(contentType, []byte("+json")):
		body := bytes.TrimSpace(ctx.PostBody())
		if len(body) == 0 {
			return "", ErrMissingURL
		}

		var req struct {
			URL any `json:"url"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		if isFalsy(req.URL) {
			return "", ErrMissingURL
		}
		if s, ok := req.URL.(string); ok {
			return s, nil
		}
		// Non-string values fail URL parsing downstream
		raw, _ := json.Marshal(req.URL)
		return string(raw), nil
	}

	return "", ErrMissingURL
}

func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	}
	return false
}
