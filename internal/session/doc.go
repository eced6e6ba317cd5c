// Package session contains the open-document model and its persistence policy.
//
// Allowed here:
// - the document registry (ordered tabs plus the active-selection pointer)
// - snapshot/reconcile of registry state and the best-effort synchronizer
//
// Not allowed here:
// - byte encoding or storage drivers (storage), rendering (render), terminal UI (tui)
package session
