// Package cache keeps the in-memory view of learning materials the shell
// renders from, plus an LRU of decoded material payloads.
package cache

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Source is where Reload reads the current materials from.
type Source interface {
	List(ctx context.Context) ([]models.LearningMaterial, error)
}

type Materials struct {
	src Source

	mu      sync.RWMutex
	list    []models.LearningMaterial
	content map[string]string

	payloads *lru.Cache[string, []byte]
}

// New creates a cache holding at most size decoded payloads.
func New(src Source, size int) (*Materials, error) {
	payloads, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Materials{src: src, content: map[string]string{}, payloads: payloads}, nil
}

// Replace swaps in a complete result set. Payloads of materials that
// disappeared or whose content changed are dropped.
func (c *Materials) Replace(list []models.LearningMaterial) {
	content := make(map[string]string, len(list))
	for _, m := range list {
		content[m.ID] = m.Content
	}

	c.mu.Lock()
	old := c.content
	c.list = append([]models.LearningMaterial(nil), list...)
	c.content = content
	c.mu.Unlock()

	for id, was := range old {
		if now, ok := content[id]; !ok || now != was {
			c.payloads.Remove(id)
		}
	}
}

// Reload re-reads everything from the source, replacing the cached view.
func (c *Materials) Reload(ctx context.Context) error {
	list, err := c.src.List(ctx)
	if err != nil {
		return err
	}
	c.Replace(list)
	return nil
}

// All returns a copy of the current view in source order.
func (c *Materials) All() []models.LearningMaterial {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.LearningMaterial{}, c.list...)
}

func (c *Materials) Get(id string) (models.LearningMaterial, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.list {
		if m.ID == id {
			return m, true
		}
	}
	return models.LearningMaterial{}, false
}

func (c *Materials) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}

// Payload returns the decoded bytes cached for id.
func (c *Materials) Payload(id string) ([]byte, bool) {
	b, ok := c.payloads.Get(id)
	if ok {
		metrics.CacheHits.Inc()
		return b, true
	}
	metrics.CacheMisses.Inc()
	return nil, false
}

func (c *Materials) StorePayload(id string, b []byte) {
	c.payloads.Add(id, b)
}
