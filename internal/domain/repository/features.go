package repository

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"hdb_service/internal/domain/model"
)

// FeatureTable is the precomputed address-feature lookup, built once at
// startup and read-only afterwards. Keys are normalized addresses.
type FeatureTable struct {
	records map[string]model.AddressFeatures
}

// Lookup implements model.FeatureLookup.
func (t *FeatureTable) Lookup(address string) (model.AddressFeatures, bool) {
	features, ok := t.records[address]
	return features, ok
}

// Len returns the number of loaded records.
func (t *FeatureTable) Len() int {
	return len(t.records)
}

// LoadFeatureCSV reads the batch-produced feature table. Expected
// columns: Address, Distance_MRT, Distance_Mall, Within_1km_of_Pri
// (extra columns are ignored). Empty or malformed optional cells load
// as unknown. Addresses are normalized on load with the same rule the
// resolver applies at request time.
func LoadFeatureCSV(path string) (*FeatureTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feature table header: %w", err)
	}

	cols := columnIndex(header)
	for _, required := range []string{"Address", "Distance_MRT", "Distance_Mall", "Within_1km_of_Pri"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("feature table missing column %q", required)
		}
	}

	records := make(map[string]model.AddressFeatures)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read feature table row: %w", err)
		}

		address := model.NormalizeAddress(row[cols["Address"]])
		records[address] = model.AddressFeatures{
			DistanceMRT:    parseOptFloat(row[cols["Distance_MRT"]]),
			DistanceMall:   parseOptFloat(row[cols["Distance_Mall"]]),
			Within1kmOfPri: parseOptBool(row[cols["Within_1km_of_Pri"]]),
		}
	}

	return &FeatureTable{records: records}, nil
}

type featureRow struct {
	Address        string          `db:"address"`
	DistanceMRT    sql.NullFloat64 `db:"distance_mrt"`
	DistanceMall   sql.NullFloat64 `db:"distance_mall"`
	Within1kmOfPri sql.NullBool    `db:"within_1km_of_pri"`
}

// LoadFeaturePostgres loads the feature table from the address_features
// table instead of a CSV file. The table is read fully into memory at
// startup, the same as the CSV path; the database is never touched per
// request.
func LoadFeaturePostgres(connStr string) (*FeatureTable, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	const query = `
		SELECT
			address,
			distance_mrt,
			distance_mall,
			within_1km_of_pri
		FROM address_features`

	var rows []featureRow
	if err := db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to query address features: %w", err)
	}

	records := make(map[string]model.AddressFeatures, len(rows))
	for _, row := range rows {
		records[model.NormalizeAddress(row.Address)] = model.AddressFeatures{
			DistanceMRT:    nullFloat(row.DistanceMRT),
			DistanceMall:   nullFloat(row.DistanceMall),
			Within1kmOfPri: nullBool(row.Within1kmOfPri),
		}
	}

	return &FeatureTable{records: records}, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// parseOptFloat parses a distance cell. Non-finite spellings (NaN,
// Inf) load as unknown too, so nil stays the single representation of
// a missing distance.
func parseOptFloat(cell string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseOptBool accepts the boolean spellings the batch pipeline emits
// (True/False, 1.0/0.0). Anything else, including an empty cell, is
// unknown.
func parseOptBool(cell string) *bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1", "1.0":
		v := true
		return &v
	case "false", "0", "0.0":
		v := false
		return &v
	default:
		return nil
	}
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
