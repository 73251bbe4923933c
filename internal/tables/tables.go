// Package tables loads and validates the four guideline reference tables.
// The datasets ship inside the binary; after Load the store is immutable
// and safe for concurrent readers without locking.
package tables

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mwieler/bili-calculator/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

// ExpectedUnits is the single unit of measure the guideline charts use.
const ExpectedUnits = "mg/dL"

var kindFiles = map[model.TableKind]string{
	model.PhototherapyNoRisk:   "data/phototherapy_no_risk.json",
	model.PhototherapyWithRisk: "data/phototherapy_with_risk.json",
	model.ExchangeNoRisk:       "data/exchange_no_risk.json",
	model.ExchangeWithRisk:     "data/exchange_with_risk.json",
}

// Store holds the four loaded reference tables, one per kind.
type Store struct {
	tables map[model.TableKind]*model.ReferenceTable
}

// Load decodes and validates all four embedded reference tables.
func Load() (*Store, error) {
	st := &Store{tables: make(map[model.TableKind]*model.ReferenceTable, len(kindFiles))}

	for _, kind := range model.AllTableKinds() {
		t, err := loadOne(kind)
		if err != nil {
			return nil, err
		}
		st.tables[kind] = t
	}

	zap.L().Debug("tables: loaded reference tables",
		zap.Int("count", len(st.tables)),
	)
	return st, nil
}

// Table returns the reference table for the given kind.
func (s *Store) Table(kind model.TableKind) (*model.ReferenceTable, error) {
	t, ok := s.tables[kind]
	if !ok {
		return nil, eris.Errorf("tables: no table loaded for kind %q", kind)
	}
	return t, nil
}

// All returns every loaded table in guideline order.
func (s *Store) All() []*model.ReferenceTable {
	out := make([]*model.ReferenceTable, 0, len(s.tables))
	for _, kind := range model.AllTableKinds() {
		if t, ok := s.tables[kind]; ok {
			out = append(out, t)
		}
	}
	return out
}

// tableJSON mirrors the external dataset contract. Bucket and hour keys are
// strings in JSON and converted to ints during decode.
type tableJSON struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Source      string                `json:"source"`
	Units       string                `json:"units"`
	Thresholds  map[string]bucketJSON `json:"thresholds"`
}

type bucketJSON struct {
	Description  string             `json:"description"`
	PlateauHour  int                `json:"plateauHour"`
	PlateauValue float64            `json:"plateauValue"`
	Values       map[string]float64 `json:"values"`
}

func loadOne(kind model.TableKind) (*model.ReferenceTable, error) {
	path, ok := kindFiles[kind]
	if !ok {
		return nil, eris.Errorf("tables: no dataset registered for kind %q", kind)
	}

	data, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tables: read dataset %s", path)
	}

	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "tables: unmarshal dataset %s", path)
	}

	t, err := fromJSON(kind, &raw)
	if err != nil {
		return nil, eris.Wrapf(err, "tables: dataset %s", path)
	}

	if err := Validate(t); err != nil {
		return nil, eris.Wrapf(err, "tables: dataset %s", path)
	}
	return t, nil
}

func fromJSON(kind model.TableKind, raw *tableJSON) (*model.ReferenceTable, error) {
	t := &model.ReferenceTable{
		Kind:        kind,
		Title:       raw.Title,
		Description: raw.Description,
		Source:      raw.Source,
		Units:       raw.Units,
		Buckets:     make(map[int]*model.GABucket, len(raw.Thresholds)),
	}

	for key, b := range raw.Thresholds {
		weeks, err := strconv.Atoi(key)
		if err != nil {
			return nil, eris.Wrapf(err, "parse bucket key %q", key)
		}
		bucket := &model.GABucket{
			Description:  b.Description,
			PlateauHour:  b.PlateauHour,
			PlateauValue: b.PlateauValue,
			Values:       make(map[int]float64, len(b.Values)),
		}
		for hourKey, v := range b.Values {
			hour, err := strconv.Atoi(hourKey)
			if err != nil {
				return nil, eris.Wrapf(err, "bucket %d: parse hour key %q", weeks, hourKey)
			}
			bucket.Values[hour] = v
		}
		t.Buckets[weeks] = bucket
	}
	return t, nil
}

// Validate checks the structural invariants of a reference table: fixed
// units, positive plateau fields, and a value for every integer hour from 1
// through the plateau hour. A violation is a data-integrity defect, not a
// runtime input fault.
func Validate(t *model.ReferenceTable) error {
	var errs []string

	if t.Units != ExpectedUnits {
		errs = append(errs, fmt.Sprintf("units must be %q, got %q", ExpectedUnits, t.Units))
	}
	if len(t.Buckets) == 0 {
		errs = append(errs, "table has no gestational-age buckets")
	}

	for weeks, b := range t.Buckets {
		if b.PlateauHour < 1 {
			errs = append(errs, fmt.Sprintf("bucket %d: plateauHour must be >= 1, got %d", weeks, b.PlateauHour))
			continue
		}
		if b.PlateauValue <= 0 {
			errs = append(errs, fmt.Sprintf("bucket %d: plateauValue must be > 0, got %g", weeks, b.PlateauValue))
		}
		for hour := 1; hour <= b.PlateauHour; hour++ {
			if _, ok := b.Values[hour]; !ok {
				errs = append(errs, fmt.Sprintf("bucket %d: missing value for hour %d (plateauHour %d)", weeks, hour, b.PlateauHour))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("integrity check failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
