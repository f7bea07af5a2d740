package alarm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to the Handler served by the notes daemon.
type Client struct {
	base string
	hc   *http.Client
}

var _ Lister = (*Client)(nil)

// NewClient returns a Client for addr, either host:port or a full URL. A nil
// hc uses a client with a short timeout.
func NewClient(addr string, hc *http.Client) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if hc == nil {
		hc = &http.Client{Timeout: 3 * time.Second}
	}
	return &Client{base: base, hc: hc}
}

// BaseURL is the address requests are sent to.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) Schedule(ctx context.Context, a Alarm) error {
	if err := validate(a); err != nil {
		return err
	}
	body, err := json.Marshal(scheduleRequest{At: a.At, Title: a.Title, Body: a.Body, Precision: a.Precision})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, alarmPath(a.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return readError(resp)
}

func (c *Client) Cancel(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, alarmPath(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return readError(resp)
}

func (c *Client) Pending(ctx context.Context) ([]Alarm, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/alarms", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := readError(resp); err != nil {
		return nil, err
	}
	var alarms []Alarm
	if err := json.NewDecoder(resp.Body).Decode(&alarms); err != nil {
		return nil, fmt.Errorf("alarm: decode pending: %w", err)
	}
	return alarms, nil
}

// Ping checks the daemon is up.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return readError(resp)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func alarmPath(id int64) string {
	return "/v1/alarms/" + strconv.FormatInt(id, 10)
}

func readError(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	var e apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
	if e.Code == codeExactNotPermitted {
		return ErrExactNotPermitted
	}
	if e.Error == "" {
		e.Error = resp.Status
	}
	return fmt.Errorf("alarm: daemon returned %d: %s", resp.StatusCode, e.Error)
}
