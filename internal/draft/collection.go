package draft

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Collection is the Store implementation over a Backend. Callers in one
// process are serialized; separate processes sharing a backend are not.
type Collection struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time
	newID   func() string
}

type Option func(*Collection)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) { c.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(gen func() string) Option {
	return func(c *Collection) { c.newID = gen }
}

func NewCollection(backend Backend, opts ...Option) *Collection {
	c := &Collection{
		backend: backend,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save appends d under a fresh id and creation time, ignoring any id it
// already carries.
func (c *Collection) Save(d Draft) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	drafts, err := c.read()
	if err != nil {
		return "", err
	}
	d.ID = c.newID()
	d.CreatedAt = c.now().UTC()
	drafts = append(drafts, d)
	if err := c.write(drafts); err != nil {
		return "", err
	}
	return d.ID, nil
}

func (c *Collection) Load(id string) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	drafts, err := c.read()
	if err != nil {
		return Draft{}, err
	}
	for _, d := range drafts {
		if d.ID == id {
			return d, nil
		}
	}
	return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	drafts, err := c.read()
	if err != nil {
		return err
	}
	kept := drafts[:0]
	found := false
	for _, d := range drafts {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.write(kept)
}

func (c *Collection) List() ([]Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

func (c *Collection) read() ([]Draft, error) {
	data, err := c.backend.Read()
	if err != nil {
		return nil, fmt.Errorf("read drafts: %w", err)
	}
	drafts := []Draft{}
	if len(data) == 0 {
		return drafts, nil
	}
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("decode drafts: %w", err)
	}
	return drafts, nil
}

func (c *Collection) write(drafts []Draft) error {
	data, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("encode drafts: %w", err)
	}
	if err := c.backend.Write(data); err != nil {
		return fmt.Errorf("write drafts: %w", err)
	}
	return nil
}
