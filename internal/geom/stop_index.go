package geom

import (
	"sort"

	"github.com/tidwall/rtree"

	"transitstats.opentransit.org/internal/models"
)

// StopIndex is a spatial index over stop positions for bounding-box
// queries. It is built once per dataset snapshot and is safe for concurrent
// reads after construction.
type StopIndex struct {
	tree rtree.RTreeG[string]
}

// NewStopIndex indexes the given stops by coordinate.
func NewStopIndex(stops []models.Stop) *StopIndex {
	ix := &StopIndex{}
	for _, s := range stops {
		pt := [2]float64{s.Lon, s.Lat}
		ix.tree.Insert(pt, pt, s.ID)
	}
	return ix
}

// StopsInBounds returns the identifiers of all indexed stops inside the
// bounds, edges included, sorted for deterministic output.
func (ix *StopIndex) StopsInBounds(b Bounds) []string {
	var ids []string
	ix.tree.Search(
		[2]float64{b.MinLon, b.MinLat},
		[2]float64{b.MaxLon, b.MaxLat},
		func(min, max [2]float64, id string) bool {
			ids = append(ids, id)
			return true
		},
	)
	sort.Strings(ids)
	return ids
}
