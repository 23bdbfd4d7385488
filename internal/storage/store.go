package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/san-kum/pdratio/internal/config"
	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/model"
)

const (
	metadataFile = "metadata.json"
	valuesFile   = "values.csv"
)

// ErrRunNotFound indicates an id with no run directory.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per estimation run. Only final estimates are
// written; simulated paths never leave memory.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Timestamp  time.Time         `json:"timestamp"`
	Params     model.Params      `json:"params"`
	Grid       config.GridConfig `json:"grid"`
	Workers    int               `json:"workers"`
	SeedOffset uint64            `json:"seed_offset"`
	ElapsedMs  float64           `json:"elapsed_ms"`
	Finite     bool              `json:"finite"`
}

// ValueRecord is one row of values.csv.
type ValueRecord struct {
	X      float64 `csv:"x" json:"x"`
	Value  float64 `csv:"value" json:"value"`
	StdErr float64 `csv:"stderr" json:"stderr"`
}

func (s *Store) Save(label string, cfg *config.Config, result *estimator.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Label:      label,
		Timestamp:  s.now(),
		Params:     cfg.Model,
		Grid:       cfg.Grid,
		Workers:    result.Workers,
		SeedOffset: cfg.SeedOffset,
		ElapsedMs:  float64(result.Elapsed.Microseconds()) / 1000,
		Finite:     result.AllFinite(),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	records := make([]ValueRecord, result.Len())
	for i, pt := range result.Points() {
		records[i] = ValueRecord{X: pt.X, Value: pt.Value, StdErr: pt.StdErr}
	}

	err := writeFile(filepath.Join(runDir, valuesFile), func(w io.Writer) error {
		return gocsv.Marshal(&records, w)
	})
	if err != nil {
		return "", fmt.Errorf("write values: %w", err)
	}
	return runID, nil
}

func writeJSON(path string, v interface{}) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeFile creates path and runs write on it. A failed Close is returned
// like a failed write.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return closeAfter(f, write(f))
}

// closeAfter closes c and returns err, or the Close error when err is nil.
func closeAfter(c io.Closer, err error) error {
	if cerr := c.Close(); cerr != nil && err == nil {
		return cerr
	}
	return err
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadValues(runID string) ([]ValueRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, valuesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	records := make([]ValueRecord, 0)
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return records, nil
		}
		return nil, fmt.Errorf("read values: %w", err)
	}
	return records, nil
}

// Split separates records into grid, value and standard-error columns.
func Split(records []ValueRecord) (grid, values, stderrs []float64) {
	grid = make([]float64, len(records))
	values = make([]float64, len(records))
	stderrs = make([]float64, len(records))
	for i, r := range records {
		grid[i], values[i], stderrs[i] = r.X, r.Value, r.StdErr
	}
	return grid, values, stderrs
}
