package api

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
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/geojournal/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization не переносится при редиректе автоматически
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetToken задает bearer токен для последующих запросов
func (c *Client) SetToken(token string) {
	c.token = token
}

// Error is a non-2xx answer decoded from the error envelope
type Error struct {
	Code    string
	Message string
	Fields  []api.FieldError
	Status  int
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("server error (%d %s): %s", e.Status, e.Code, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("server error (%d %s): %s [%s]", e.Status, e.Code, e.Message, strings.Join(parts, "; "))
}

// IsExpired сообщает, что сервер отверг токен как просроченный
func IsExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == "EXPIRED_TOKEN"
}

// IsUnauthorized reports any 401 answer
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Profile возвращает профиль текущего пользователя
func (c *Client) Profile(ctx context.Context) (*api.User, error) {
	var resp api.ProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile", nil, &resp); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &resp.User, nil
}

// UpdateProfile меняет имя и/или пароль
func (c *Client) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.User, error) {
	var resp api.ProfileResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/auth/profile", req, &resp); err != nil {
		return nil, fmt.Errorf("update profile request failed: %w", err)
	}
	return &resp.User, nil
}

// NewEntry is the multipart payload of CreateEntry
type NewEntry struct {
	Image       io.Reader
	Title       string
	Description string
	Latitude    string
	Longitude   string
	Filename    string
}

// CreateEntry загружает картинку и создает запись
func (c *Client) CreateEntry(ctx context.Context, in NewEntry) (*api.Entry, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"latitude", in.Latitude},
		{"longitude", in.Longitude},
	} {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}
	if in.Image != nil {
		part, err := mw.CreateFormFile("image", in.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, in.Image); err != nil {
			return nil, fmt.Errorf("failed to copy image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var resp api.EntryResponse
	if err := c.do(ctx, http.MethodPost, "/api/entries", &buf, mw.FormDataContentType(), &resp); err != nil {
		return nil, fmt.Errorf("create entry request failed: %w", err)
	}
	return &resp.Entry, nil
}

// ListOptions are the query parameters of ListEntries; zero values are omitted
type ListOptions struct {
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.StartDate != "" {
		q.Set("startDate", o.StartDate)
	}
	if o.EndDate != "" {
		q.Set("endDate", o.EndDate)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListEntries возвращает страницу записей текущего пользователя
func (c *Client) ListEntries(ctx context.Context, opts ListOptions) (*api.EntryList, error) {
	var resp api.EntryList
	if err := c.doJSON(ctx, http.MethodGet, "/api/entries"+opts.query(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list entries request failed: %w", err)
	}
	return &resp, nil
}

// GetEntry возвращает запись по id
func (c *Client) GetEntry(ctx context.Context, id string) (*api.Entry, error) {
	var resp api.EntryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get entry request failed: %w", err)
	}
	return &resp.Entry, nil
}

// UpdateEntry заменяет текстовые поля и координаты записи
func (c *Client) UpdateEntry(ctx context.Context, id string, req api.UpdateEntryRequest) (*api.Entry, error) {
	var resp api.EntryResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/entries/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, fmt.Errorf("update entry request failed: %w", err)
	}
	return &resp.Entry, nil
}

// DeleteEntry удаляет запись
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete entry request failed: %w", err)
	}
	return nil
}

// Health опрашивает GET /health
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}
	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var resp api.HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	if body == nil {
		return c.do(ctx, method, path, nil, "", result)
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(jsonData), "application/json", result)
}

// do выполняет запрос и раскрывает data из конверта ответа
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result any) error {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	respBody, err := c.send(req)
	if err != nil {
		return err
	}

	var envelope api.RawResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if result == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// send возвращает тело успешного ответа или *Error
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, &Error{
				Status:  resp.StatusCode,
				Code:    errResp.Code,
				Message: errResp.Message,
				Fields:  errResp.Errors,
			}
		}
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}
