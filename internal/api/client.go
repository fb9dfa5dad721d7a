package api

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

	"collabdesk/internal/domain"
	collab_errors "collabdesk/pkg/errors"
)

// Client talks to the collaboration platform REST API. It performs no
// automatic retries: callers own the recovery policy (rollback for sends,
// surface-and-retry for fetches, next tick for the count poll).
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return collab_errors.ErrRequestCancelled
		}
		return fmt.Errorf("%w: %v", collab_errors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return collab_errors.ErrNotFound
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("api error %s: %s", env.Code, msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) ListConversations(ctx context.Context, cursor string, limit int) (ConversationPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var page ConversationPage
	err := c.do(ctx, http.MethodGet, "/v1/conversations", q, nil, &page)
	return page, err
}

func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (Conversation, error) {
	var conv Conversation
	err := c.do(ctx, http.MethodPost, "/v1/conversations", nil, req, &conv)
	return conv, err
}

// ListMessages fetches messages strictly before the cursor. The platform
// may answer ascending or descending; page.Order says which.
func (c *Client) ListMessages(ctx context.Context, conversationID, before string, limit int) (MessagePage, error) {
	q := url.Values{}
	if before != "" {
		q.Set("before", before)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var page MessagePage
	err := c.do(ctx, http.MethodGet, "/v1/conversations/"+conversationID+"/messages", q, nil, &page)
	return page, err
}

func (c *Client) SendMessage(ctx context.Context, conversationID string, req SendMessageRequest) (SendMessageResponse, error) {
	var resp SendMessageResponse
	err := c.do(ctx, http.MethodPost, "/v1/conversations/"+conversationID+"/messages", nil, req, &resp)
	return resp, err
}

func (c *Client) MarkConversationRead(ctx context.Context, conversationID string) (MarkReadResponse, error) {
	var resp MarkReadResponse
	err := c.do(ctx, http.MethodPost, "/v1/conversations/"+conversationID+"/read", nil, nil, &resp)
	return resp, err
}

func (c *Client) NotificationCount(ctx context.Context) (int, error) {
	var count NotificationCount
	if err := c.do(ctx, http.MethodGet, "/v1/notifications/count", nil, nil, &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var list NotificationList
	if err := c.do(ctx, http.MethodGet, "/v1/notifications", nil, nil, &list); err != nil {
		return nil, err
	}
	return list.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/notifications/"+id+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/notifications/read-all", nil, nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/notifications/"+id, nil, nil, nil)
}

func (c *Client) GetPreferences(ctx context.Context) (domain.NotificationPreferences, error) {
	var prefs domain.NotificationPreferences
	err := c.do(ctx, http.MethodGet, "/v1/notifications/preferences", nil, nil, &prefs)
	return prefs, err
}

func (c *Client) UpdatePreferences(ctx context.Context, prefs domain.NotificationPreferences) error {
	return c.do(ctx, http.MethodPatch, "/v1/notifications/preferences", nil, prefs, nil)
}
