package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/gocarina/gocsv"
)

type ExportData struct {
	Run    *RunMetadata  `json:"run"`
	Points []ExportPoint  `json:"points"`
}

// ExportPoint uses nil for estimates that overflowed, which JSON cannot carry.
type ExportPoint struct {
	X      float64  `json:"x"`
	Value  *float64 `json:"value"`
	StdErr *float64 `json:"stderr"`
}

func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	records, err := s.LoadValues(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: meta, Points: make([]ExportPoint, len(records))}
	for i, r := range records {
		data.Points[i] = ExportPoint{X: r.X, Value: finite(r.Value), StdErr: finite(r.StdErr)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ExportCSV writes the run's values in the values.csv layout.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	records, err := s.LoadValues(runID)
	if err != nil {
		return err
	}
	return gocsv.Marshal(records, w)
}
