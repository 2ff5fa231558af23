package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Rows [][]float64 `json:"rows"`
}

func (s *Store) export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	_, rows, err := s.LoadPoints(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{RunMetadata: *meta, Rows: rows}, nil
}

// ExportJSON writes the run's metadata and rows as one JSON document.
func (s *Store) ExportJSON(path, runID string) error {
	data, err := s.export(runID)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return encodeJSON(file, data)
}

func (s *Store) ExportJSONStdout(runID string) error {
	data, err := s.export(runID)
	if err != nil {
		return err
	}
	return encodeJSON(os.Stdout, data)
}

// ExportCSV copies the run's points.csv to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	file, err := os.Open(s.PointsPath(runID))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}

func encodeJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
