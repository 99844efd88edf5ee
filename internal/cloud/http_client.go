package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/petsync/syncd/internal/models"
	"github.com/petsync/syncd/internal/observability"
)

// HTTPClient talks to the cloud pet-record API over HTTP/JSON and receives
// change notifications over a WebSocket subscription.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	dialer  *websocket.Dialer
}

// NewHTTPClient creates a cloud client for the given base URL. The timeout
// bounds every remote call; a timeout surfaces as a normal transport
// failure, not a distinct state.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
	}
}

// Get fetches the full remote record
func (c *HTTPClient) Get(ctx context.Context, remoteID string) (*models.RemotePetRecord, error) {
	var record models.RemotePetRecord
	if err := c.do(ctx, http.MethodGet, "/v1/pets/"+remoteID, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Insert creates the remote record and returns it with its assigned id
func (c *HTTPClient) Insert(ctx context.Context, record *models.RemotePetRecord) (*models.RemotePetRecord, error) {
	var created models.RemotePetRecord
	if err := c.do(ctx, http.MethodPost, "/v1/pets", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update; the server stamps updated_at
func (c *HTTPClient) Update(ctx context.Context, remoteID string, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, "/v1/pets/"+remoteID, fields, nil)
}

// Subscribe opens the WebSocket event stream for one record. Events are
// forwarded until ctx is cancelled or the connection drops, then the
// channel is closed.
func (c *HTTPClient) Subscribe(ctx context.Context, remoteID string) (<-chan models.RemoteChange, error) {
	wsURL, err := c.eventsURL(remoteID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("subscribe to %s: %w", remoteID, err)
	}

	events := make(chan models.RemoteChange, 16)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()

		for {
			var change models.RemoteChange
			if err := conn.ReadJSON(&change); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.Warnf("Cloud event stream closed: %v", err)
				}
				return
			}
			if change.RemoteID != remoteID {
				continue
			}

			select {
			case events <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (c *HTTPClient) eventsURL(remoteID string) (string, error) {
	u, err := url.Parse(c.baseURL + "/v1/pets/" + remoteID + "/events")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloud request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ErrRemoteNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cloud request %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("cloud response %s %s: %w", method, path, err)
		}
	}
	return nil
}
