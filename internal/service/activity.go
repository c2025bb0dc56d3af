package service

import (
	"sort"
	"time"

	"transitstats.opentransit.org/internal/feed"
)

// ActivityIndex resolves trip, route and stop activity for dates and
// moments. It is a read-only view over a snapshot; build a new index when
// the snapshot is replaced.
type ActivityIndex struct {
	snap     *feed.Snapshot
	resolver *Resolver
}

// NewActivityIndex creates an ActivityIndex over a dataset snapshot.
func NewActivityIndex(snap *feed.Snapshot) *ActivityIndex {
	return &ActivityIndex{snap: snap, resolver: NewResolver(snap)}
}

// Resolver returns the underlying calendar resolver.
func (ix *ActivityIndex) Resolver() *Resolver {
	return ix.resolver
}

// activeServices evaluates IsActive once per distinct service identifier.
// Many trips share a service, so trip-level activity broadcasts from this
// map instead of resolving per trip.
func (ix *ActivityIndex) activeServices(date time.Time) map[string]bool {
	active := make(map[string]bool)
	for _, trip := range ix.snap.Trips() {
		if _, seen := active[trip.ServiceID]; !seen {
			active[trip.ServiceID] = ix.resolver.IsActive(trip.ServiceID, date)
		}
	}
	return active
}

// ActiveTripsOn returns the set of trips whose service runs on the date.
func (ix *ActivityIndex) ActiveTripsOn(date time.Time) map[string]bool {
	byService := ix.activeServices(date)
	trips := make(map[string]bool)
	for _, trip := range ix.snap.Trips() {
		if byService[trip.ServiceID] {
			trips[trip.ID] = true
		}
	}
	return trips
}

// ActiveTripsAt returns the subset of ActiveTripsOn whose stop-visit span
// covers the given time of day in seconds past midnight. Times are not
// reduced modulo 24h: a visit at 25:10:00 covers second 90600, not 3000.
func (ix *ActivityIndex) ActiveTripsAt(date time.Time, secs int) map[string]bool {
	trips := make(map[string]bool)
	for tripID := range ix.ActiveTripsOn(date) {
		visits := ix.snap.Visits(tripID)
		if len(visits) == 0 {
			continue
		}
		first := visits[0].DepartureSec
		last := visits[len(visits)-1].DepartureSec
		if first <= secs && secs <= last {
			trips[tripID] = true
		}
	}
	return trips
}

// ActivityMatrix is a trip-by-date activity table. Dates hold the query
// dates in input order; each row holds one trip's 0/1 activity cells in
// the same order. Rows are sorted by trip identifier.
type ActivityMatrix struct {
	Dates []time.Time
	Rows  []ActivityRow
}

// ActivityRow is one trip's activity cells across the matrix dates.
type ActivityRow struct {
	TripID string
	Active []bool
}

// ColumnSums returns, per date, the number of active trips.
func (m *ActivityMatrix) ColumnSums() []int {
	sums := make([]int, len(m.Dates))
	for _, row := range m.Rows {
		for i, active := range row.Active {
			if active {
				sums[i]++
			}
		}
	}
	return sums
}

// ActivityMatrix computes trip activity for every (trip, date) pair.
// Activity is resolved once per distinct service per date and broadcast to
// that service's trips. An empty date list yields a matrix with no dates
// and no rows.
func (ix *ActivityIndex) ActivityMatrix(dates []time.Time) *ActivityMatrix {
	matrix := &ActivityMatrix{Dates: dates}
	if len(dates) == 0 {
		return matrix
	}

	byServiceByDate := make([]map[string]bool, len(dates))
	for i, date := range dates {
		byServiceByDate[i] = ix.activeServices(date)
	}

	trips := ix.snap.Trips()
	matrix.Rows = make([]ActivityRow, 0, len(trips))
	for _, trip := range trips {
		row := ActivityRow{TripID: trip.ID, Active: make([]bool, len(dates))}
		for i := range dates {
			row.Active[i] = byServiceByDate[i][trip.ServiceID]
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	sort.Slice(matrix.Rows, func(i, j int) bool {
		return matrix.Rows[i].TripID < matrix.Rows[j].TripID
	})
	return matrix
}

// BusiestDate returns the date with the most active trips. Ties resolve to
// the earliest date in input order. ok is false when dates is empty.
func (ix *ActivityIndex) BusiestDate(dates []time.Time) (time.Time, bool) {
	if len(dates) == 0 {
		return time.Time{}, false
	}
	sums := ix.ActivityMatrix(dates).ColumnSums()
	best := 0
	for i := 1; i < len(sums); i++ {
		if sums[i] > sums[best] {
			best = i
		}
	}
	return dates[best], true
}

// ActiveRoutesOn projects ActiveTripsOn through the trip→route relation.
func (ix *ActivityIndex) ActiveRoutesOn(date time.Time) map[string]bool {
	routes := make(map[string]bool)
	byService := ix.activeServices(date)
	for _, trip := range ix.snap.Trips() {
		if byService[trip.ServiceID] {
			routes[trip.RouteID] = true
		}
	}
	return routes
}

// ActiveStopsOn projects ActiveTripsOn through the trip→visited-stops
// relation.
func (ix *ActivityIndex) ActiveStopsOn(date time.Time) map[string]bool {
	stops := make(map[string]bool)
	for tripID := range ix.ActiveTripsOn(date) {
		for _, visit := range ix.snap.Visits(tripID) {
			stops[visit.StopID] = true
		}
	}
	return stops
}
