package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/serjvanilla/go-overpass"

	"hdb_service/internal/domain/model"
)

// LoadReferenceCSV reads one reference coordinate table (MRT stations,
// malls or schools). Expected columns: Address, Lat, Long. Rows with
// unparseable coordinates are rejected, not skipped: a broken reference
// table should stop startup.
func LoadReferenceCSV(path string) ([]model.ReferencePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read reference table header: %w", err)
	}

	cols := columnIndex(header)
	for _, required := range []string{"Address", "Lat", "Long"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("reference table %s missing column %q", path, required)
		}
	}

	var points []model.ReferencePoint
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reference table row: %w", err)
		}

		lat, err := strconv.ParseFloat(row[cols["Lat"]], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude for %q: %w", row[cols["Address"]], err)
		}
		long, err := strconv.ParseFloat(row[cols["Long"]], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude for %q: %w", row[cols["Address"]], err)
		}

		points = append(points, model.ReferencePoint{
			Name:       row[cols["Address"]],
			Coordinate: model.Coordinate{Lat: lat, Long: long},
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("reference table %s is empty", path)
	}
	return points, nil
}

// singaporeBBox bounds the OSM station query to Singapore.
const singaporeBBox = "1.13,103.59,1.47,104.12"

// OverpassRepository supplies the transit reference set from OSM when
// no station CSV is available. The CSV remains the authoritative
// source; this is a startup-time fallback only.
type OverpassRepository struct {
	client *overpass.Client
}

func NewOverpassRepository(endpoint string, timeout time.Duration) *OverpassRepository {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &OverpassRepository{client: &client}
}

// TransitStations queries OSM for named railway stations inside the
// Singapore bounding box. Results are sorted by name so the nearest
// scan's tie-break order is stable across restarts.
func (r *OverpassRepository) TransitStations() ([]model.ReferencePoint, error) {
	query := fmt.Sprintf(`
		[out:json];
		(
			node["railway"="station"](%s);
		);
		out body;
	`, singaporeBBox)

	result, err := r.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass station query failed: %w", err)
	}

	var points []model.ReferencePoint
	for _, node := range result.Nodes {
		name, ok := node.Tags["name"]
		if !ok || name == "" {
			continue
		}
		points = append(points, model.ReferencePoint{
			Name:       name,
			Coordinate: model.Coordinate{Lat: node.Lat, Long: node.Lon},
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("overpass returned no stations")
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Name < points[j].Name
	})
	return points, nil
}
