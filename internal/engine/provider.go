package engine

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Provider hands out the process-wide engine client, creating it on first
// use. Construction is cheap and performs no network traffic; concurrent
// callers always observe the same instance.
type Provider struct {
	endpoint string
	logger   *logrus.Logger

	once   sync.Once
	client *Client
}

func NewProvider(endpoint string, logger *logrus.Logger) *Provider {
	return &Provider{
		endpoint: endpoint,
		logger:   logger,
	}
}

// Get returns the shared client, constructing it on the first call.
func (p *Provider) Get() *Client {
	p.once.Do(func() {
		p.logger.WithField("endpoint", p.endpoint).Info("Initializing search engine client")
		p.client = NewClient(p.endpoint, p.logger)
	})
	return p.client
}
