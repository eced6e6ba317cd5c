package session

import (
	"context"
	"log/slog"
)

// Persister stores and retrieves snapshots. Load reports false when there is
// no usable prior session.
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool)
}

// Synchronizer mirrors registry state into a Persister. Persistence is best
// effort: the live registry is authoritative.
type Synchronizer struct {
	store   Persister
	logger  *slog.Logger
	lastErr error
}

// NewSynchronizer returns a synchronizer over store. A nil logger discards.
func NewSynchronizer(store Persister, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{store: store, logger: logger}
}

// OnChange persists the current state of reg. Call it after every mutation.
// Failures are logged and kept for LastErr; they never reach the caller and
// never touch reg.
func (s *Synchronizer) OnChange(ctx context.Context, reg *Registry) {
	snap := reg.Snapshot()
	if err := s.store.Save(ctx, snap); err != nil {
		s.lastErr = err
		s.logger.Warn("session not persisted",
			slog.Int("documents", len(snap.Documents)),
			slog.Any("error", err))
		return
	}
	s.lastErr = nil
	s.logger.Debug("session persisted",
		slog.Int("documents", len(snap.Documents)),
		slog.Int("active", snap.ActiveIndex))
}

// Restore loads the last persisted session into reg. It reports false and
// leaves reg untouched when there is no usable snapshot.
func (s *Synchronizer) Restore(ctx context.Context, reg *Registry) bool {
	snap, ok := s.store.Load(ctx)
	if !ok || snap.Documents == nil {
		s.logger.Info("no prior session")
		return false
	}
	reg.Reconcile(snap)
	s.logger.Info("session restored",
		slog.Int("documents", reg.Len()),
		slog.Int("active", reg.ActiveIndex()))
	return true
}

// LastErr returns the error of the most recent save, or nil when it succeeded.
func (s *Synchronizer) LastErr() error { return s.lastErr }
