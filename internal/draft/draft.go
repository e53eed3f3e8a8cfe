// Package draft parks unfinished sales so they can be resumed later. The whole
// collection lives as one JSON array under a single key and every mutation
// rewrites it; the store assumes a single writer.
package draft

import (
	"errors"
	"time"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
)

// Key is the name the draft collection is stored under.
const Key = "pos_drafts"

var ErrNotFound = errors.New("draft not found")

// Draft is a snapshot of a whole POS session. It is a value: resuming copies
// its fields into the live session and keeps no reference to it.
type Draft struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CreatedAt time.Time             `json:"created_at"`
	Customer  domain.Patient        `json:"customer"`
	Cart      cart.Cart             `json:"cart"`
	Payment   domain.PaymentDetails `json:"payment"`
}

// Store persists drafts.
type Store interface {
	Save(d Draft) (string, error)
	Load(id string) (Draft, error)
	Remove(id string) error
	List() ([]Draft, error)
}

// Backend is a synchronous key/value slot holding the serialized collection.
// Read returns nil, nil when nothing has been written yet.
type Backend interface {
	Read() ([]byte, error)
	Write(data []byte) error
}
