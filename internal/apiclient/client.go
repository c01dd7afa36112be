package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/metrics"
	"pharmaconnect_core/internal/services/dto"
)

const (
	DefaultTimeout = 30 * time.Second

	refreshEndpoint = "/auth/refresh"
)

// TokenStore - то, что клиенту нужно от хранилища сессии
type TokenStore interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetRefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, accessToken string) error
	ClearTokens(ctx context.Context) error
}

// Client - транспорт к REST API: заголовки, таймаут, refresh по 401.
// Бизнес-логики здесь нет.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenStore
	metrics    *metrics.Metrics

	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout задаёт таймаут одной попытки запроса
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response - полностью прочитанный ответ одной попытки
type response struct {
	status      int
	contentType string
	body        []byte
}

// ============================================
// Публичные методы
// ============================================

// Do отправляет JSON-запрос и декодирует ответ в out (если out != nil)
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}
	return c.execute(ctx, method, endpoint, payload, "application/json", out)
}

func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out)
}

// Upload отправляет multipart/form-data: текстовые поля и один файл
func (c *Client) Upload(ctx context.Context, endpoint string, fields map[string]string, fileField, fileName string, data []byte, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	return c.execute(ctx, http.MethodPost, endpoint, buf.Bytes(), writer.FormDataContentType(), out)
}

// ============================================
// Основной цикл: попытка, refresh по 401, одна повторная попытка
// ============================================

func (c *Client) execute(ctx context.Context, method, endpoint string, payload []byte, contentType string, out interface{}) error {
	if logger.GetRequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, uuid.NewString())
	}

	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, endpoint, payload, contentType, token, 1)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && endpoint != refreshEndpoint {
		retried, err := c.retryAfterRefresh(ctx, method, endpoint, payload, contentType)
		if err != nil {
			return err
		}
		if retried != nil {
			resp = retried
		}
	}

	return decodeResponse(resp, out)
}

// retryAfterRefresh возвращает nil без ошибки, если refresh не делался или
// не удался: тогда наверх уходит исходный 401
func (c *Client) retryAfterRefresh(ctx context.Context, method, endpoint string, payload []byte, contentType string) (*response, error) {
	refreshToken, err := c.tokens.GetRefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, nil
	}

	accessToken, ok := c.refresh(ctx, refreshToken)
	if !ok {
		return nil, nil
	}

	c.metrics.Retry()
	return c.send(ctx, method, endpoint, payload, contentType, accessToken, 2)
}

// refresh обменивает refresh-токен на новый access-токен.
// Параллельные 401 с одним refresh-токеном делят один запрос.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, bool) {
	result, _, _ := c.refreshGroup.Do(refreshToken, func() (interface{}, error) {
		// Отмена у одного из ожидающих не должна ломать refresh для остальных
		refreshCtx := context.WithoutCancel(ctx)

		accessToken, err := c.requestNewAccessToken(refreshCtx, refreshToken)
		if err == nil {
			err = c.tokens.SetAccessToken(refreshCtx, accessToken)
		}
		if err != nil {
			logger.CtxWarn(ctx, "token refresh failed, clearing tokens", "error", err.Error())
			if clearErr := c.tokens.ClearTokens(refreshCtx); clearErr != nil {
				logger.CtxWithError(ctx, "failed to clear tokens", clearErr)
			}
			c.metrics.TokenRefresh(false)
			return "", nil
		}

		c.metrics.TokenRefresh(true)
		logger.CtxDebug(ctx, "access token refreshed")
		return accessToken, nil
	})

	accessToken, _ := result.(string)
	return accessToken, accessToken != ""
}

func (c *Client) requestNewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(dto.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, http.MethodPost, refreshEndpoint, payload, "application/json", "", 1)
	if err != nil {
		return "", err
	}

	var parsed dto.RefreshTokenResponse
	if err := decodeResponse(resp, &parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", errors.New("refresh response has no access token")
	}
	return parsed.AccessToken, nil
}

// send выполняет одну попытку с собственным таймаутом и читает тело целиком
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, contentType, token string, attempt int) (*response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", logger.GetRequestID(ctx))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(ctx, method, endpoint, 0, start, attempt)
		return nil, classifyTransportError(attemptCtx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(ctx, method, endpoint, resp.StatusCode, start, attempt)
	if err != nil {
		return nil, classifyTransportError(attemptCtx, err)
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

func (c *Client) observe(ctx context.Context, method, endpoint string, status int, start time.Time, attempt int) {
	duration := time.Since(start)
	logger.HTTPLog(ctx, method, endpoint, status, duration, attempt)
	c.metrics.ObserveRequest(method, status, duration)
}

// classifyTransportError: истёкший таймаут попытки - TimeoutError,
// всё остальное без ответа - NetworkError
func classifyTransportError(attemptCtx context.Context, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return appErrors.TimeoutError(err)
	}
	return appErrors.NetworkError(err)
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// decodeResponse: не-2xx -> HTTPError с разобранным телом, 2xx -> декодирование в out
func decodeResponse(resp *response, out interface{}) error {
	if resp.status < 200 || resp.status > 299 {
		var body interface{} = string(resp.body)
		if isJSON(resp.contentType) {
			var parsed map[string]interface{}
			if err := json.Unmarshal(resp.body, &parsed); err == nil {
				body = parsed
			}
		}
		return appErrors.HTTPError(resp.status, body)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if !isJSON(resp.contentType) {
		if s, ok := out.(*string); ok {
			*s = string(resp.body)
			return nil
		}
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
