package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"simplesearch/internal/metrics"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Query runs one search call against the engine. Transport failures and
// non-2xx statuses both surface as ErrUnavailable; a 2xx body that is not
// valid JSON degrades to an empty response instead of failing the request.
func (c *Client) Query(ctx context.Context, request QueryRequest) (RawResponse, error) {
	url := c.baseURL + "/search/"

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"url":     url,
		"hits":    request.Hits,
		"ranking": request.Ranking,
	}).Debug("Sending engine query")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeQuery(start, "error")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		observeQuery(start, "error")
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"url":           url,
		"response_size": len(responseBody),
	}).Debug("Engine response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observeQuery(start, "error")
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(responseBody))
	}
	observeQuery(start, "success")

	var raw RawResponse
	if err := json.Unmarshal(responseBody, &raw); err != nil {
		c.logger.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"response_size": len(responseBody),
		}).Warn("Engine returned a non-JSON body, treating as empty response")
		return RawResponse{}, nil
	}

	return raw, nil
}

func observeQuery(start time.Time, status string) {
	metrics.EngineQueriesTotal.WithLabelValues(status).Inc()
	metrics.EngineQueryDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// Ping checks engine liveness through its application status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ApplicationStatus", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
