package radiomics

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestTable writes a radiomic feature CSV for the given modality:
// two reserved columns, then one _ED_, one _ET_ and one _NC_ column.
// Rows hold simple deterministic values derived from the row number.
func writeTestTable(t *testing.T, dir, modality string, patients []string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("SubjectID,Index,original_ED_mean,original_ET_mean,original_NC_mean\n")
	for i, p := range patients {
		fmt.Fprintf(&b, "%s,%d,%d,%d,%d\n", p, i, i+1, (i+1)*10, (i+1)*100)
	}

	path := filepath.Join(dir, "radiomic_features_"+modality+".csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("Failed to write feature table: %v", err)
	}
}

func TestRetrieve(t *testing.T) {
	dir := t.TempDir()
	writeTestTable(t, dir, "FLAIR", []string{"P001", "P002", "P003"})

	table, err := Retrieve(dir, "FLAIR")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if len(table.Patients) != 3 {
		t.Errorf("Expected 3 patients, got %d", len(table.Patients))
	}
	if len(table.Columns) != 3 {
		t.Errorf("Expected 3 feature columns (reserved columns dropped), got %d", len(table.Columns))
	}

	row, ok := table.Row("P002")
	if !ok {
		t.Fatal("P002 missing from table")
	}
	if row[0] != 2 || row[1] != 20 || row[2] != 200 {
		t.Errorf("Unexpected P002 row: %v", row)
	}
}

func TestRetrieveMissingFile(t *testing.T) {
	if _, err := Retrieve(t.TempDir(), "FLAIR"); err == nil {
		t.Error("Expected error for missing feature table")
	}
}

func TestRestrict(t *testing.T) {
	dir := t.TempDir()
	writeTestTable(t, dir, "FLAIR", []string{"P001", "P002", "P003"})
	table, err := Retrieve(dir, "FLAIR")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	restricted, err := table.Restrict([]string{"P003", "P001"})
	if err != nil {
		t.Fatalf("Restrict failed: %v", err)
	}
	if len(restricted.Patients) != 2 || restricted.Patients[0] != "P003" {
		t.Errorf("Restrict did not preserve the requested order: %v", restricted.Patients)
	}

	if _, err := table.Restrict([]string{"P001", "P999"}); err == nil {
		t.Error("Expected error for a patient missing from the table")
	}
}

// TestStandardizeMoments verifies that standardization produces zero
// mean and unit standard deviation over the restricted population, not
// the full table.
func TestStandardizeMoments(t *testing.T) {
	dir := t.TempDir()
	writeTestTable(t, dir, "FLAIR", []string{"P001", "P002", "P003", "P004", "P005"})
	table, err := Retrieve(dir, "FLAIR")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	// Restrict to a strict subset so population moments differ from the
	// full table's.
	restricted, err := table.Restrict([]string{"P001", "P002", "P004"})
	if err != nil {
		t.Fatalf("Restrict failed: %v", err)
	}
	standardized := restricted.Standardize()

	for _, name := range standardized.Columns {
		col, err := standardized.Column(name)
		if err != nil {
			t.Fatalf("Column failed: %v", err)
		}
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))

		var variance float64
		for _, v := range col {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(col))

		if math.Abs(mean) > 1e-9 {
			t.Errorf("Column %s: expected mean 0, got %g", name, mean)
		}
		if math.Abs(math.Sqrt(variance)-1) > 1e-9 {
			t.Errorf("Column %s: expected stddev 1, got %g", name, math.Sqrt(variance))
		}
	}
}

func TestStandardizeConstantColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "radiomic_features_T1.csv")
	csv := "SubjectID,Index,original_ED_const\nP001,0,5\nP002,1,5\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("Failed to write feature table: %v", err)
	}

	table, err := Retrieve(dir, "T1")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	standardized := table.Standardize()
	col, err := standardized.Column("original_ED_const")
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	for _, v := range col {
		if v != 0 {
			t.Errorf("Zero-variance column should center to 0, got %g", v)
		}
	}
}

func TestSubRegionVector(t *testing.T) {
	dir := t.TempDir()
	writeTestTable(t, dir, "FLAIR", []string{"P001", "P002"})
	table, err := Retrieve(dir, "FLAIR")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	ed, err := table.SubRegionVector("P002", MarkerEdema)
	if err != nil {
		t.Fatalf("SubRegionVector failed: %v", err)
	}
	if len(ed) != 1 || ed[0] != 2 {
		t.Errorf("Unexpected edema vector for P002: %v", ed)
	}

	nc, err := table.SubRegionVector("P001", MarkerNonEnhancing)
	if err != nil {
		t.Fatalf("SubRegionVector failed: %v", err)
	}
	if len(nc) != 1 || nc[0] != 100 {
		t.Errorf("Unexpected non-enhancing vector for P001: %v", nc)
	}

	if _, err := table.SubRegionVector("P999", MarkerEdema); err == nil {
		t.Error("Expected error for missing patient")
	}
	if _, err := table.SubRegionVector("P001", "_XX_"); err == nil {
		t.Error("Expected error for unknown marker")
	}
}
