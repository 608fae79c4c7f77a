// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"restaurant-admin/internal/models"
)

const maxErrorBody = 512

// StatusError возвращается, когда API заказов отвечает не 2xx.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: %s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api: %s %s: unexpected status %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client работает с API заказов. Все эндпоинты лежат под /users.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

func NewClient(baseURL string, timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		headers:    headers,
	}
}

func (c *Client) OwnerOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/users/ownerorders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) AdminOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/users/adminorders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Menu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.do(ctx, http.MethodGet, "/users/menu", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Staff(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	if err := c.do(ctx, http.MethodGet, "/users/staff", nil, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (c *Client) Feedback(ctx context.Context) ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := c.do(ctx, http.MethodGet, "/users/feedback", nil, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (c *Client) AcceptOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPut, "/users/admin/order/"+url.PathEscape(orderID)+"/accept", nil, nil)
}

func (c *Client) RejectOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPut, "/users/admin/order/"+url.PathEscape(orderID)+"/reject", nil, nil)
}

// SubmitKitchenOrder отправляет тикет на эндпоинт очереди кухни.
func (c *Client) SubmitKitchenOrder(ctx context.Context, ticket models.KitchenTicket) error {
	return c.do(ctx, http.MethodPost, "/users/kitchenorder", ticket, nil)
}

func (c *Client) DeleteOwnerOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/users/deleteownerorder/"+url.PathEscape(orderID), nil, nil)
}

func (c *Client) AddMenu(ctx context.Context, item models.MenuItem) error {
	return c.do(ctx, http.MethodPost, "/users/addmenu", item, nil)
}

func (c *Client) DeleteMenu(ctx context.Context, title string) error {
	return c.do(ctx, http.MethodDelete, "/users/deletemenu/"+url.PathEscape(title), nil, nil)
}

func (c *Client) AddStaff(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/users/staff", map[string]string{"name": name}, nil)
}

func (c *Client) SetStaffOnline(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/users/staffstatusonline/"+url.PathEscape(name), nil, nil)
}

func (c *Client) SetStaffOffline(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/users/staffstatusoffline/"+url.PathEscape(name), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: failed to create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("api: %s %s timed out or was cancelled: %w", method, path, err)
		}
		return fmt.Errorf("api: failed to perform %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("api: запрос выполнен", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// пустое тело означает пустую коллекцию
			return nil
		}
		return fmt.Errorf("api: failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
