package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"planora/internal/gateway"

	"github.com/stretchr/testify/assert"
)

func newTestClient(baseURL string) *gateway.Client {
	return gateway.NewClient(gateway.Config{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		WriteServer:   "ext-server",
		WriteDatabase: "ext_db",
	})
}

func TestClient_Query_Success(t *testing.T) {
	var received gateway.QueryRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"recordset":    []map[string]interface{}{{"id": "t1", "title": "First"}},
				"rowsAffected": []int64{},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.Query(context.Background(), gateway.QueryRequest{
		SQL:      "SELECT id, title FROM tasks WHERE project_id = @project_id",
		Server:   "reporting",
		Database: "analytics",
		Params:   map[string]interface{}{"project_id": "p1"},
	})

	assert.NoError(t, err)
	assert.Len(t, result.Recordset, 1)
	assert.Equal(t, "t1", result.Recordset[0]["id"])

	// Parameters travel by name, never interpolated into the SQL text.
	assert.Equal(t, "p1", received.Params["project_id"])
	assert.Equal(t, "reporting", received.Server)
	assert.Equal(t, "analytics", received.Database)
}

func TestClient_Query_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Invalid object name 'nope'",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.Query(context.Background(), gateway.QueryRequest{SQL: "SELECT * FROM nope"})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "Invalid object name")
}

func TestClient_Query_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := newTestClient(srv.URL)

	result, err := client.Query(context.Background(), gateway.QueryRequest{SQL: "SELECT 1"})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "gateway unreachable")
}

func TestClient_Exec_RefusesOutOfScopeWrites(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.Exec(context.Background(), "other-server", "ext_db", "DELETE FROM users", nil)
	assert.ErrorIs(t, err, gateway.ErrWriteScope)

	_, err = client.Exec(context.Background(), "ext-server", "other_db", "DELETE FROM users", nil)
	assert.ErrorIs(t, err, gateway.ErrWriteScope)

	// Rejection happens before any network call.
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_Exec_WriteScopeAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"recordset":    []map[string]interface{}{},
				"rowsAffected": []int64{1},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.Exec(context.Background(), "ext-server", "ext_db",
		"UPDATE tasks SET title = @title WHERE id = @id",
		map[string]interface{}{"id": "t1", "title": "Renamed"})

	assert.NoError(t, err)
	assert.Equal(t, []int64{1}, result.RowsAffected)
}

func TestClient_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"recordset": []map[string]interface{}{{"ok": 1}}},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	assert.True(t, client.HealthCheck(context.Background()))

	srv.Close()
	assert.False(t, client.HealthCheck(context.Background()))
}

func TestClient_GetServers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/servers", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"name": "ext-server", "host": "ext.example.com", "readOnly": false},
				{"name": "reporting", "host": "rpt.example.com", "readOnly": true},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	servers, err := client.GetServers(context.Background())

	assert.NoError(t, err)
	assert.Len(t, servers, 2)
	assert.Equal(t, "ext-server", servers[0].Name)
	assert.True(t, servers[1].ReadOnly)
}
