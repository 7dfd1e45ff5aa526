package models

import "time"

// InventoryEntry is the live on-hand record for one ingredient.
// Baseline is the canonical start-of-day quantity the entry resets to
// on day rollover or administrative restore. SnapshotDate records the
// business day the current quantities belong to.
type InventoryEntry struct {
	Name         string    `json:"name" db:"name"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Baseline     float64   `json:"baseline" db:"baseline"`
	SnapshotDate time.Time `json:"snapshot_date" db:"snapshot_date"`
}

// SameBusinessDay reports whether two instants fall on the same
// calendar day in UTC. Rollover comparisons ignore the time of day.
func SameBusinessDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
