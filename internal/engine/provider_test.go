package engine

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_GetReturnsSameClient(t *testing.T) {
	provider := NewProvider("http://localhost:8080", logrus.New())

	first := provider.Get()
	second := provider.Get()

	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestProvider_GetConcurrent(t *testing.T) {
	provider := NewProvider("http://localhost:8080", logrus.New())

	clients := make([]*Client, 20)
	var wg sync.WaitGroup
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i] = provider.Get()
		}(i)
	}
	wg.Wait()

	for _, c := range clients {
		assert.Same(t, clients[0], c)
	}
}

func TestProvider_NoNetworkOnConstruction(t *testing.T) {
	// Pointing at a dead endpoint must not fail until a query is made.
	provider := NewProvider("http://127.0.0.1:1", logrus.New())
	client := provider.Get()
	require.NotNil(t, client)
}
