package blockchain

import (
	"fmt"
	"sync"
	"time"
)

// ClientFactory caches one EVM client per RPC endpoint
type ClientFactory struct {
	evmClients  map[string]*EVMClient
	callTimeout time.Duration
	mu          sync.RWMutex
}

// NewClientFactory creates a factory whose clients bound each call by callTimeout
func NewClientFactory(callTimeout time.Duration) *ClientFactory {
	return &ClientFactory{
		evmClients:  make(map[string]*EVMClient),
		callTimeout: callTimeout,
	}
}

// GetEVMClient returns an EVM client for the given RPC URL
// If a client already exists for the URL, it returns the cached client
func (f *ClientFactory) GetEVMClient(rpcURL string) (*EVMClient, error) {
	f.mu.RLock()
	client, ok := f.evmClients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.evmClients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewEVMClient(rpcURL, f.callTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM client: %w", err)
	}

	f.evmClients[rpcURL] = newClient
	return newClient, nil
}

// RegisterEVMClient injects/overrides cached client for a specific rpcURL.
func (f *ClientFactory) RegisterEVMClient(rpcURL string, client *EVMClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evmClients[rpcURL] = client
}

// Close closes every cached client
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for url, c := range f.evmClients {
		c.Close()
		delete(f.evmClients, url)
	}
}
