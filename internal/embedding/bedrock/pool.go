package bedrock

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// clientPool caches embedding clients by region, model, and credential
// provider so repeat calls share pooled HTTP/2 connections instead of
// opening new ones.
type clientPool struct {
	mu      sync.Mutex
	clients map[poolKey]*Client
}

type poolKey struct {
	region  string
	modelID string
	creds   string
}

var sharedPool = clientPool{clients: make(map[poolKey]*Client)}

func (p *clientPool) get(cfg aws.Config, modelID string) *Client {
	key := poolKey{region: cfg.Region, modelID: modelID}
	if cfg.Credentials != nil {
		key.creds = fmt.Sprintf("%p", cfg.Credentials)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	client, ok := p.clients[key]
	if !ok {
		client = NewClient(cfg, modelID)
		p.clients[key] = client
	}
	return client
}

// GetSharedClient returns the process-wide embedding client for the given
// region and model, creating it on first use.
func GetSharedClient(cfg aws.Config, modelID string) *Client {
	return sharedPool.get(cfg, modelID)
}
