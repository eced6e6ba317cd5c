// Package tui binds the document registry to the terminal.
//
// Allowed here:
// - drawing the tab strip, content pane and status line from registry state
// - turning key presses, mouse clicks and finished file loads into registry operations
//
// Not allowed here:
// - selection or reconciliation rules (session), encoding (storage), markdown walking (render)
package tui
