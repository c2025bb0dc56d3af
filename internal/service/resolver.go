// Package service decides which services, trips, routes and stops are in
// operation on a given date or at a given moment of a service day.
package service

import (
	"time"

	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/models"
)

// Resolver answers whether a service runs on a date. Lookups are O(1)
// against the snapshot's prebuilt indices, which matters because activity
// resolution calls IsActive once per (service, date) pair at scale.
type Resolver struct {
	snap *feed.Snapshot
}

// NewResolver creates a Resolver over a dataset snapshot.
func NewResolver(snap *feed.Snapshot) *Resolver {
	return &Resolver{snap: snap}
}

// IsActive reports whether the service runs on the given date.
//
// Priority order: a calendar exception for (service, date) wins
// unconditionally; otherwise the weekly pattern applies within the
// calendar entry's date range; a service with neither is inactive.
func (r *Resolver) IsActive(serviceID string, date time.Time) bool {
	if exc, ok := r.snap.Exception(serviceID, date); ok {
		return exc == models.ExceptionAdded
	}
	if entry, ok := r.snap.CalendarEntry(serviceID); ok {
		return entry.Covers(date) && entry.RunsOn(date.Weekday())
	}
	return false
}
