package session

import "github.com/google/uuid"

// Registry owns the ordered open documents and the active selection.
// It is not safe for concurrent use; callers serialize mutations on one goroutine.
type Registry struct {
	docs   []Document
	active int
	newID  func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the UUIDv7 generator used for new documents.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		docs:   []Document{},
		active: NoActive,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddOrReplace replaces the content of the document called name, keeping its
// index and ID, or appends a new document. The selection is left alone.
func (r *Registry) AddOrReplace(name, content string) (int, bool) {
	if idx := r.IndexOf(name); idx >= 0 {
		r.docs[idx].Content = content
		return idx, false
	}
	r.docs = append(r.docs, Document{ID: r.newID(), Name: name, Content: content})
	return len(r.docs) - 1, true
}

// Select activates index. An out of range index clears the selection.
func (r *Registry) Select(index int) int {
	if r.valid(index) {
		r.active = index
	} else {
		r.active = NoActive
	}
	return r.active
}

// Close removes the document at index. Closing at or before the active tab
// shifts the selection one to the left, clamped to the first tab.
func (r *Registry) Close(index int) int {
	if !r.valid(index) {
		return r.active
	}
	r.docs = append(r.docs[:index], r.docs[index+1:]...)
	switch {
	case len(r.docs) == 0:
		r.active = NoActive
	case index <= r.active:
		r.active = max(0, r.active-1)
	}
	return r.active
}

// Clear closes every document.
func (r *Registry) Clear() {
	r.docs = []Document{}
	r.active = NoActive
}

// Current returns the active document.
func (r *Registry) Current() (Document, bool) {
	if !r.valid(r.active) {
		return Document{}, false
	}
	return r.docs[r.active], true
}

// IndexOf returns the index of the document called name or -1.
func (r *Registry) IndexOf(name string) int {
	for i, d := range r.docs {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of open documents.
func (r *Registry) Len() int { return len(r.docs) }

// ActiveIndex returns the selected index or NoActive.
func (r *Registry) ActiveIndex() int { return r.active }

// Documents returns a copy of the open documents in tab order.
func (r *Registry) Documents() []Document { return cloneDocuments(r.docs) }

// Snapshot returns the persistable projection of the registry.
func (r *Registry) Snapshot() Snapshot {
	return Snapshot{Documents: cloneDocuments(r.docs), ActiveIndex: r.active}
}

// Reconcile replaces the registry state with snap. Persisted state is not
// trusted: an active index that does not point at a restored document falls
// back to the first tab, or to NoActive when nothing was restored.
func (r *Registry) Reconcile(snap Snapshot) {
	r.docs = cloneDocuments(snap.Documents)
	for i := range r.docs {
		if r.docs[i].ID == "" {
			r.docs[i].ID = r.newID()
		}
	}
	r.active = snap.ActiveIndex
	if !r.valid(r.active) {
		if len(r.docs) > 0 {
			r.active = 0
		} else {
			r.active = NoActive
		}
	}
}

func (r *Registry) valid(index int) bool {
	return index >= 0 && index < len(r.docs)
}
