package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	pointsFile   = "points.csv"
)

var ErrColumns = errors.New("storage: row width does not match columns")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunMetadata describes one stored sweep. Params holds the numeric inputs
// (window, geometry, tolerances) and Inputs the named ones (table files,
// detector preset, material).
type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Params    map[string]float64 `json:"params,omitempty"`
	Inputs    map[string]string  `json:"inputs,omitempty"`
	Columns   []string           `json:"columns"`
	Points    int                `json:"points"`
}

// Save writes meta and rows under a new run directory and returns its ID.
// meta.ID, Timestamp and Points are filled in.
func (s *Store) Save(meta RunMetadata, rows [][]float64) (string, error) {
	for i, row := range rows {
		if len(row) != len(meta.Columns) {
			return "", fmt.Errorf("%w: row %d has %d values for %d columns", ErrColumns, i, len(row), len(meta.Columns))
		}
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Kind, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Points = len(rows)

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, pointsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(meta.Columns); err != nil {
		return "", err
	}
	for _, row := range rows {
		rec := make([]string, len(row))
		for j, val := range row {
			rec[j] = strconv.FormatFloat(val, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the metadata of every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadPoints reads the header and rows of a run's points.csv.
func (s *Store) LoadPoints(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(s.PointsPath(runID))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return []string{}, [][]float64{}, nil
	}

	columns := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: row %d column %q: %w", runID, i+1, columns[j], err)
			}
			row[j] = val
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

func (s *Store) PointsPath(runID string) string {
	return filepath.Join(s.baseDir, runID, pointsFile)
}
