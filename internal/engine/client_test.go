package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/search/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "select * from sources * where userQuery()", body["yql"])
		assert.Equal(t, "test query", body["query"])
		assert.Equal(t, float64(10), body["hits"])
		assert.Equal(t, "bm25", body["ranking"])
		assert.Equal(t, true, body["presentation.timing"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"root": map[string]interface{}{
				"fields": map[string]interface{}{"totalCount": 3},
			},
			"timing": map[string]interface{}{"total": 0.042},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, logrus.New())

	raw, err := client.Query(context.Background(), QueryRequest{
		YQL:     "select * from sources * where userQuery()",
		Query:   "test query",
		Hits:    10,
		Ranking: "bm25",
		Timing:  true,
	})
	require.NoError(t, err)
	require.Contains(t, raw, "root")
	assert.Contains(t, raw, "timing")
}

func TestClient_QueryEngineDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, logrus.New())

	_, err := client.Query(context.Background(), QueryRequest{YQL: "select * from sources * where true"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_QueryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("container overloaded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, logrus.New())

	_, err := client.Query(context.Background(), QueryRequest{YQL: "select * from sources * where true"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_QueryMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, logrus.New())

	raw, err := client.Query(context.Background(), QueryRequest{YQL: "select * from sources * where true"})
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestClient_QueryContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewClient(server.URL, logrus.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Query(ctx, QueryRequest{YQL: "select * from sources * where true"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/ApplicationStatus", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, logrus.New())
	require.NoError(t, client.Ping(context.Background()))
}

func TestClient_PingUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, logrus.New())

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
