// ABOUTME: Charm KV client holding prospect and interaction records
// ABOUTME: Serializes access to the KV and pushes writes to the charm server when auto-sync is on

package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

// ErrKeyNotFound is returned by Get for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// kvStore is the subset of *kv.KV the client uses. The badger-backed test
// KV implements it too.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client is the record store's view of a charm KV database.
type Client struct {
	mu     sync.RWMutex
	kv     kvStore
	config *Config
	remote bool
}

// NewClient opens the charm KV database for cfg.Host, pulling remote
// changes first when auto-sync is on.
func NewClient(cfg *Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := os.Setenv("CHARM_HOST", cfg.Host); err != nil {
		return nil, fmt.Errorf("failed to set charm host: %w", err)
	}

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return &Client{kv: db, config: cfg, remote: true}, nil
}

// Close releases the underlying database when it supports closing.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if closer, ok := c.kv.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm account ID linked to this device.
func (c *Client) ID() (string, error) {
	if !c.remote {
		return "", errors.New("no charm account for local client")
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

// Get returns the value for key, or ErrKeyNotFound.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (c *Client) Set(key, value []byte) error {
	return c.write(func(s kvStore) error { return s.Set(key, value) })
}

func (c *Client) Delete(key []byte) error {
	return c.write(func(s kvStore) error { return s.Delete(key) })
}

// write applies fn under the write lock and syncs afterwards when
// auto-sync is on. Sync failures leave the local write in place.
func (c *Client) write(fn func(kvStore) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.kv); err != nil {
		return err
	}
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
	return nil
}

func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Keys()
}

// KeysWithPrefix returns the keys under prefix, such as every record of one
// kind or every interaction of one prospect.
func (c *Client) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	keys, err := c.Keys()
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(keys, func(k []byte) bool {
		return !bytes.HasPrefix(k, prefix)
	}), nil
}

// Reset drops every local record.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}
