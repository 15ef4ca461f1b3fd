package client

// http_client.go talks to a running elibrary API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"
)

// HTTPClient is a thin client for the catalog API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError carries the envelope of a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the Identity Provider bearer token sent with every request.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	_, err := c.do(ctx, http.MethodGet, "/books/all", nil, &books)
	return books, err
}

func (c *HTTPClient) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if _, err := c.do(ctx, http.MethodGet, "/books/"+strconv.FormatInt(id, 10), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *HTTPClient) AddBook(ctx context.Context, req dto.BookRequest) (*models.Book, error) {
	var book models.Book
	if _, err := c.do(ctx, http.MethodPost, "/books/add", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *HTTPClient) UpdateBook(ctx context.Context, id int64, req dto.BookRequest) (string, error) {
	return c.do(ctx, http.MethodPut, "/books/update/"+strconv.FormatInt(id, 10), req, nil)
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id int64) (string, error) {
	return c.do(ctx, http.MethodDelete, "/books/delete/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) BorrowBook(ctx context.Context, id int64) (string, error) {
	return c.do(ctx, http.MethodPost, "/books/borrow/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) ReturnBook(ctx context.Context, id int64) (string, error) {
	return c.do(ctx, http.MethodPost, "/books/return/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, req dto.CredentialsRequest) (*dto.RegisterResponse, error) {
	var resp dto.RegisterResponse
	if _, err := c.do(ctx, http.MethodPost, "/users/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, req dto.CredentialsRequest) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	if _, err := c.do(ctx, http.MethodPost, "/users/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CheckUsername(ctx context.Context, username string) (*dto.UsernameCheckResponse, error) {
	var resp dto.UsernameCheckResponse
	if _, err := c.do(ctx, http.MethodGet, "/users/check/"+url.PathEscape(username), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends body as JSON, decodes the envelope and its data into out (when
// non-nil), and returns the envelope message.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (string, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer response.Body.Close() // Ensure the response body is closed

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", response.StatusCode, err)
	}

	if response.StatusCode >= 300 || !envelope.Success {
		return "", &APIError{StatusCode: response.StatusCode, Message: envelope.Message}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return "", fmt.Errorf("decode data: %w", err)
		}
	}
	return envelope.Message, nil
}
