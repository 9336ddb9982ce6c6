// Package radiomics loads externally computed radiomic feature tables and
// prepares them for spatial encoding: rows are restricted to the active
// patient population and every feature column is standardized to zero
// mean and unit variance over that population.
//
// Tables are stored one CSV per modality under the feature directory,
// named radiomic_features_<MODALITY>.csv. The first column is the patient
// identifier and the second is a reserved index column; every remaining
// column is a numeric feature. Column names carry the tumor sub-region
// markers _ED_ (edema), _ET_ (enhancing tumor) and _NC_ (non-enhancing
// core) used to group features per sub-region.
package radiomics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/stat"
)

// Tumor sub-region markers appearing in feature column names.
const (
	MarkerEdema        = "_ED_"
	MarkerEnhancing    = "_ET_"
	MarkerNonEnhancing = "_NC_"
)

// Table holds radiomic feature rows keyed by patient, in a fixed row
// order. Tables are immutable once built; Restrict and Standardize
// return new tables.
type Table struct {
	// Patients lists the row order.
	Patients []string

	// Columns lists the feature column names, excluding the two
	// reserved leading CSV columns.
	Columns []string

	rows map[string][]float64
}

// Retrieve loads the feature table for one modality from the feature
// directory. This is the external-collaborator entry point the sample
// provider calls at construction.
func Retrieve(csvDir, modality string) (*Table, error) {
	path := filepath.Join(csvDir, "radiomic_features_"+modality+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open radiomic feature table %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read radiomic feature table %s", path)
	}
	if len(records) < 2 {
		return nil, errors.Newf("radiomic feature table %s is empty or missing header", path)
	}

	header := records[0]
	if len(header) < 3 {
		return nil, errors.Newf("radiomic feature table %s has %d columns, need the two reserved columns plus features",
			path, len(header))
	}

	t := &Table{
		Columns: append([]string(nil), header[2:]...),
		rows:    make(map[string][]float64, len(records)-1),
	}
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, errors.Newf("row %d of %s has %d fields, header has %d",
				i+1, path, len(record), len(header))
		}
		patient := record[0]
		row := make([]float64, len(record)-2)
		for j, field := range record[2:] {
			val, convErr := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if convErr != nil {
				return nil, errors.Wrapf(convErr, "row %d column %q of %s", i+1, header[j+2], path)
			}
			row[j] = val
		}
		t.Patients = append(t.Patients, patient)
		t.rows[patient] = row
	}
	return t, nil
}

// Row returns the feature vector of one patient in column order.
func (t *Table) Row(patient string) ([]float64, bool) {
	row, ok := t.rows[patient]
	return row, ok
}

// Restrict returns a new table containing only the given patients, in
// the given order. Every requested patient must be present.
func (t *Table) Restrict(patients []string) (*Table, error) {
	out := &Table{
		Patients: append([]string(nil), patients...),
		Columns:  t.Columns,
		rows:     make(map[string][]float64, len(patients)),
	}
	for _, p := range patients {
		row, ok := t.rows[p]
		if !ok {
			return nil, errors.Newf("patient %s missing from radiomic feature table", p)
		}
		out.rows[p] = row
	}
	return out, nil
}

// Standardize returns a new table with every column scaled to zero mean
// and unit variance over this table's row population. The population
// standard deviation is used; zero-variance columns are centered only.
func (t *Table) Standardize() *Table {
	out := &Table{
		Patients: t.Patients,
		Columns:  t.Columns,
		rows:     make(map[string][]float64, len(t.Patients)),
	}
	for _, p := range t.Patients {
		out.rows[p] = make([]float64, len(t.Columns))
	}

	col := make([]float64, len(t.Patients))
	for j := range t.Columns {
		for i, p := range t.Patients {
			col[i] = t.rows[p][j]
		}
		mean := stat.Mean(col, nil)
		std := stat.PopStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		for _, p := range t.Patients {
			out.rows[p][j] = (t.rows[p][j] - mean) / std
		}
	}
	return out
}

// Column returns one feature column in row order.
func (t *Table) Column(name string) ([]float64, error) {
	j := -1
	for i, c := range t.Columns {
		if c == name {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, errors.Newf("unknown feature column %q", name)
	}
	col := make([]float64, len(t.Patients))
	for i, p := range t.Patients {
		col[i] = t.rows[p][j]
	}
	return col, nil
}

// SubRegionVector returns the features of one patient whose column names
// contain the given sub-region marker, in column order.
func (t *Table) SubRegionVector(patient, marker string) ([]float64, error) {
	row, ok := t.rows[patient]
	if !ok {
		return nil, errors.Newf("patient %s missing from radiomic feature table", patient)
	}
	var vec []float64
	for j, c := range t.Columns {
		if strings.Contains(c, marker) {
			vec = append(vec, row[j])
		}
	}
	if len(vec) == 0 {
		return nil, errors.Newf("no columns carry sub-region marker %q", marker)
	}
	return vec, nil
}
