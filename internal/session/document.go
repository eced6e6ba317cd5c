package session

// NoActive is the active index of a registry with nothing selected.
const NoActive = -1

// Document is one loaded text file.
type Document struct {
	ID      string
	Name    string
	Content string
}

// Snapshot is the persisted projection of a Registry.
type Snapshot struct {
	Documents   []Document
	ActiveIndex int
}

func cloneDocuments(docs []Document) []Document {
	out := make([]Document, len(docs))
	copy(out, docs)
	return out
}
