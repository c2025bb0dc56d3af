package geom

import (
	"encoding/json"

	"transitstats.opentransit.org/internal/models"
)

// StopPoints maps each stop identifier to its coordinate.
func StopPoints(stops []models.Stop) map[string]Point {
	points := make(map[string]Point, len(stops))
	for _, s := range stops {
		points[s.ID] = Point{Lat: s.Lat, Lon: s.Lon}
	}
	return points
}

// ShapeLines maps each shape identifier to its polyline.
func ShapeLines(shapes []models.Shape) map[string]*Polyline {
	lines := make(map[string]*Polyline, len(shapes))
	for _, s := range shapes {
		points := make([]Point, len(s.Points))
		for i, p := range s.Points {
			points[i] = Point{Lat: p.Lat, Lon: p.Lon}
		}
		lines[s.ID] = NewPolyline(points)
	}
	return lines
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   geoJSONGeometry `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// ShapesGeoJSON renders shapes as a GeoJSON feature collection of
// linestrings, one feature per shape with a shape_id property.
// Coordinates are [lon, lat] per the GeoJSON default CRS.
func ShapesGeoJSON(shapes []models.Shape) ([]byte, error) {
	collection := geoJSONCollection{
		Type:     "FeatureCollection",
		Features: make([]geoJSONFeature, 0, len(shapes)),
	}
	for _, s := range shapes {
		coords := make([][]float64, len(s.Points))
		for i, p := range s.Points {
			coords[i] = []float64{p.Lon, p.Lat}
		}
		collection.Features = append(collection.Features, geoJSONFeature{
			Type:       "Feature",
			Properties: map[string]any{"shape_id": s.ID},
			Geometry: geoJSONGeometry{
				Type:        "LineString",
				Coordinates: coords,
			},
		})
	}
	return json.Marshal(collection)
}
