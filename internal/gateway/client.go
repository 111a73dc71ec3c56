package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrWriteScope is returned when a write is attempted against any
// server/database pair other than the configured write scope. Every other
// combination the gateway knows about is read-only by policy; the gateway
// itself executes whatever it is given, so this client is the choke point.
var ErrWriteScope = errors.New("gateway: writes are restricted to the configured server and database")

type Config struct {
	BaseURL       string
	APIKey        string
	WriteServer   string
	WriteDatabase string
}

// Client is a thin HTTP client for the remote SQL execution service.
// It is stateless and safe for reuse across requests.
type Client struct {
	baseURL       string
	apiKey        string
	writeServer   string
	writeDatabase string
	httpClient    *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		writeServer:   cfg.WriteServer,
		writeDatabase: cfg.WriteDatabase,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) WriteServer() string   { return c.writeServer }
func (c *Client) WriteDatabase() string { return c.writeDatabase }

// QueryRequest is the wire format of POST {baseURL}/v1/query. Params are
// always passed by name; SQL must never be built by interpolating
// untrusted input.
type QueryRequest struct {
	SQL      string                 `json:"sql"`
	Server   string                 `json:"server"`
	Database string                 `json:"database"`
	Params   map[string]interface{} `json:"params"`
}

type Result struct {
	Recordset    []map[string]interface{} `json:"recordset"`
	RowsAffected []int64                  `json:"rowsAffected"`
}

type queryResponse struct {
	Success bool    `json:"success"`
	Data    *Result `json:"data"`
	Error   string  `json:"error"`
}

// ServerDescriptor describes a server profile known to the gateway.
type ServerDescriptor struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	ReadOnly bool   `json:"readOnly"`
}

type serversResponse struct {
	Success bool               `json:"success"`
	Data    []ServerDescriptor `json:"data"`
	Error   string             `json:"error"`
}

// Query executes read statements against any server/database the gateway
// exposes.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*Result, error) {
	return c.do(ctx, req)
}

// Exec executes a write statement. The server/database pair must match the
// configured write scope exactly; anything else is rejected before any
// network call.
func (c *Client) Exec(ctx context.Context, server, database, sql string, params map[string]interface{}) (*Result, error) {
	if server != c.writeServer || database != c.writeDatabase {
		return nil, ErrWriteScope
	}
	return c.do(ctx, QueryRequest{
		SQL:      sql,
		Server:   server,
		Database: database,
		Params:   params,
	})
}

func (c *Client) do(ctx context.Context, req QueryRequest) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}

	var parsed queryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("gateway returned malformed response: %w", err)
	}
	if !parsed.Success {
		if parsed.Error == "" {
			parsed.Error = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("gateway error: %s", parsed.Error)
	}
	if parsed.Data == nil {
		return &Result{}, nil
	}
	return parsed.Data, nil
}

// HealthCheck reports whether the gateway can reach the write-scope
// database.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.do(ctx, QueryRequest{
		SQL:      "SELECT 1 AS ok",
		Server:   c.writeServer,
		Database: c.writeDatabase,
		Params:   map[string]interface{}{},
	})
	return err == nil
}

// GetServers lists the server profiles the gateway exposes.
func (c *Client) GetServers(ctx context.Context) ([]ServerDescriptor, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/servers", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var parsed serversResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("gateway returned malformed response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("gateway error: %s", parsed.Error)
	}
	return parsed.Data, nil
}
