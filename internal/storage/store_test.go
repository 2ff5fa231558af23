package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func yieldRun() (RunMetadata, [][]float64) {
	meta := RunMetadata{
		Kind:    "yield",
		Params:  map[string]float64{"delta_e": 33},
		Inputs:  map[string]string{"cross_section": "10b_an.cross"},
		Columns: []string{"energy_kev", "yield", "abs_err"},
	}
	rows := [][]float64{
		{300, 6.6e-6, 7.3e-20},
		{350, 1.0 / 3.0, 0},
	}
	return meta, rows
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, rows := yieldRun()
	runID, err := st.Save(meta, rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "yield_") {
		t.Errorf("unexpected run id %q", runID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != runID || loaded.Kind != "yield" {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if loaded.Points != 2 {
		t.Errorf("expected 2 points, got %d", loaded.Points)
	}
	if loaded.Params["delta_e"] != 33 || loaded.Inputs["cross_section"] != "10b_an.cross" {
		t.Errorf("params lost: %+v %+v", loaded.Params, loaded.Inputs)
	}

	columns, got, err := st.LoadPoints(runID)
	if err != nil {
		t.Fatalf("load points failed: %v", err)
	}
	if strings.Join(columns, ",") != "energy_kev,yield,abs_err" {
		t.Errorf("unexpected columns %v", columns)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i := range rows {
		for j := range rows[i] {
			if got[i][j] != rows[i][j] {
				t.Errorf("row %d col %d: expected %v, got %v", i, j, rows[i][j], got[i][j])
			}
		}
	}
}

func TestStoreSaveColumnMismatch(t *testing.T) {
	st := New(t.TempDir())
	meta, _ := yieldRun()
	_, err := st.Save(meta, [][]float64{{1, 2}})
	if !errors.Is(err, ErrColumns) {
		t.Errorf("expected ErrColumns, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	meta, rows := yieldRun()
	first, err := st.Save(meta, rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta.Kind = "efficiency"
	second, err := st.Save(meta, rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Directories without metadata are skipped.
	if err := os.MkdirAll(filepath.Join(dir, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs not ordered by time: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
	if _, err := st.Load("yield_1"); err == nil {
		t.Error("expected error loading missing run")
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	meta, rows := yieldRun()
	runID, err := st.Save(meta, rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "points.csv"} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	meta, rows := yieldRun()
	runID, err := st.Save(meta, rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	path := filepath.Join(dir, "out.json")
	if err := st.ExportJSON(path, runID); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != runID || len(data.Rows) != 2 || data.Rows[1][1] != 1.0/3.0 {
		t.Errorf("unexpected export %+v", data)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatalf("export csv failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "energy_kev,yield,abs_err" {
		t.Errorf("unexpected csv:\n%s", buf.String())
	}
}
