package storage

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

// MemoryCodec keeps the encoded document in process memory. Commits still go
// through Encode/Decode so it behaves like the durable codecs.
type MemoryCodec struct {
	mu      sync.Mutex
	data    []byte
	commits int
	failErr error
}

func NewMemoryCodec() *MemoryCodec {
	return &MemoryCodec{}
}

func (c *MemoryCodec) Load(ctx context.Context) (*models.Snapshot, error) {
	c.mu.Lock()
	data := c.data
	c.mu.Unlock()

	return loadOrInit(ctx, c, data, data != nil)
}

func (c *MemoryCodec) Commit(_ context.Context, s *models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil {
		return unavailable("commit", c.failErr)
	}
	data, err := Encode(s)
	if err != nil {
		return unavailable("encode", err)
	}
	c.data = data
	c.commits++
	return nil
}

// Commits returns how many commits succeeded.
func (c *MemoryCodec) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

// SetFailCommit makes every following Commit fail with err; nil restores
// normal behaviour.
func (c *MemoryCodec) SetFailCommit(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failErr = err
}

func (c *MemoryCodec) Close() error { return nil }
