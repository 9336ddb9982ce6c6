package dataset

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"gbmset/internal/models"
)

// LoadLabelsCSV reads a base label table from a two-column CSV of
// patient identifier and numeric label, preserving row order. A header
// row is skipped when its label field does not parse as a number.
func LoadLabelsCSV(path string) ([]models.LabelEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open label table %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read label table %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Newf("label table %s is empty", path)
	}

	var entries []models.LabelEntry
	for i, record := range records {
		if len(record) < 2 {
			return nil, errors.Newf("row %d of %s has %d fields, need patient and label", i+1, path, len(record))
		}
		label, convErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if convErr != nil {
			if i == 0 {
				continue // header row
			}
			return nil, errors.Wrapf(convErr, "row %d of %s has a non-numeric label", i+1, path)
		}
		entries = append(entries, models.LabelEntry{
			Ref:   models.SampleRef{Patient: strings.TrimSpace(record[0])},
			Label: label,
		})
	}
	if len(entries) == 0 {
		return nil, errors.Newf("label table %s holds no samples", path)
	}
	return entries, nil
}
