package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jask/mdtabs/internal/session"
)

const (
	// DefaultKey is the key the session snapshot is written under.
	DefaultKey = "mdtabs.session"
	// DefaultMaxBytes caps an encoded snapshot at 5 MiB.
	DefaultMaxBytes = 5 << 20
)

var (
	ErrCapacityExceeded = errors.New("storage: capacity exceeded")
	ErrNotText          = errors.New("storage: document is not valid text")
)

// Store is a key-value byte store. Get returns nil, nil for a missing key and
// Delete of a missing key succeeds.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Adapter persists session snapshots under a single key.
type Adapter struct {
	store    Store
	key      string
	maxBytes int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey sets the key the snapshot is stored under. Empty keeps DefaultKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithMaxBytes limits the encoded snapshot size. Zero disables the limit.
func WithMaxBytes(n int) Option {
	return func(a *Adapter) {
		if n >= 0 {
			a.maxBytes = n
		}
	}
}

// NewAdapter returns an adapter over store using DefaultKey and DefaultMaxBytes
// unless opts say otherwise.
func NewAdapter(store Store, opts ...Option) *Adapter {
	a := &Adapter{store: store, key: DefaultKey, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type record struct {
	Documents *[]document `json:"documents"`
	Active    *int        `json:"activeIndex"`
}

type document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	ID      string `json:"id"`
}

// Save encodes snap and writes it. Any error means the session was not
// persisted; callers treat it as non-fatal.
func (a *Adapter) Save(ctx context.Context, snap session.Snapshot) error {
	docs := make([]document, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		if !utf8.ValidString(d.Name) || !utf8.ValidString(d.Content) {
			return fmt.Errorf("save %q: %w", d.Name, ErrNotText)
		}
		docs = append(docs, document{Name: d.Name, Content: d.Content, ID: d.ID})
	}
	rec := record{Documents: &docs}
	if snap.ActiveIndex != session.NoActive {
		active := snap.ActiveIndex
		rec.Active = &active
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if a.maxBytes > 0 && len(data) > a.maxBytes {
		return fmt.Errorf("session is %d bytes, limit %d: %w", len(data), a.maxBytes, ErrCapacityExceeded)
	}
	if err := a.store.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Key returns the key snapshots are stored under.
func (a *Adapter) Key() string { return a.key }

// Reset forgets the stored snapshot.
func (a *Adapter) Reset(ctx context.Context) error {
	if err := a.store.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. It reports false when nothing usable is
// stored: a missing key, a read error and a malformed record look the same.
func (a *Adapter) Load(ctx context.Context) (session.Snapshot, bool) {
	data, err := a.store.Get(ctx, a.key)
	if err != nil || len(data) == 0 {
		return session.Snapshot{}, false
	}
	return decode(data)
}

func decode(data []byte) (session.Snapshot, bool) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return session.Snapshot{}, false
	}
	if rec.Documents == nil {
		return session.Snapshot{}, false
	}
	snap := session.Snapshot{
		Documents:   make([]session.Document, 0, len(*rec.Documents)),
		ActiveIndex: session.NoActive,
	}
	for _, d := range *rec.Documents {
		snap.Documents = append(snap.Documents, session.Document{ID: d.ID, Name: d.Name, Content: d.Content})
	}
	if rec.Active != nil {
		snap.ActiveIndex = *rec.Active
	}
	return snap, true
}
