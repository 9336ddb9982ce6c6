package dataset

import (
	"gbmset/internal/models"
)

// expandIndex synthesizes the virtual samples of the expanded label
// table: the original block first, then one full copy of it per
// augmentation kind in configured order, each copy tagged with the kind
// and carrying the originating sample's label unchanged. The result has
// (1 + len(kinds)) × len(base) entries.
func expandIndex(base []models.LabelEntry, kinds []models.Augmentation) []models.LabelEntry {
	expanded := make([]models.LabelEntry, 0, (1+len(kinds))*len(base))
	expanded = append(expanded, base...)
	for _, kind := range kinds {
		for _, e := range base {
			expanded = append(expanded, models.LabelEntry{
				Ref:   models.SampleRef{Patient: e.Ref.Patient, Aug: kind},
				Label: e.Label,
			})
		}
	}
	return expanded
}
