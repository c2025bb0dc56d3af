package feed

import (
	"github.com/davecgh/go-spew/spew"
)

// TableCounts returns the row count of each input table.
func (s *Snapshot) TableCounts() map[string]int {
	return map[string]int{
		"calendar":       len(s.tables.Calendar),
		"calendar_dates": len(s.tables.CalendarDates),
		"trips":          len(s.tables.Trips),
		"stop_times":     len(s.tables.StopTimes),
		"routes":         len(s.tables.Routes),
		"stops":          len(s.tables.Stops),
		"shapes":         len(s.tables.Shapes),
	}
}

// DebugDump renders the table counts and distance unit in a readable form
// for troubleshooting dataset loads.
func (s *Snapshot) DebugDump() string {
	return spew.Sdump(map[string]any{
		"dist_unit": s.tables.DistUnit,
		"tables":    s.TableCounts(),
	})
}
