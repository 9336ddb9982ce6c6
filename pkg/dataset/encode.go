package dataset

import (
	"github.com/cockroachdb/errors"

	"gbmset/pkg/radiomics"
	"gbmset/pkg/volume"
)

// Spatial layout of the radiomic feature overlay. Each tumor sub-region
// contributes a 15×9 block of standardized features written into a
// fixed window of the appended zero plane; the offsets are an exact
// positional contract carried over from the trained models and must not
// move.
const (
	encodeRows     = 15
	encodeCols     = 9
	encodeRowStart = 36 // anchor 43 - 7
	encodeColStart = 37 // anchor 41 - 4
)

// subRegionMarkers orders the overlay: edema into channel 0, enhancing
// tumor into channel 1, non-enhancing core into channel 2.
var subRegionMarkers = []string{
	radiomics.MarkerEdema,
	radiomics.MarkerEnhancing,
	radiomics.MarkerNonEnhancing,
}

// encode appends one zero spatial plane per leading channel and writes
// the standardized radiomic sub-region features of the originating
// patient into the fixed window of that plane, one sub-region per
// leading channel. The tensor must carry at least three leading
// channels and each sub-region group must hold exactly 15×9 features.
func (p *Provider) encode(vol *volume.Volume, patient string) (*volume.Volume, error) {
	if vol.Rank() != 4 {
		return nil, errors.Newf("feature encoding needs a channel-stacked tensor, got shape %v", vol.Shape)
	}
	if vol.Shape[0] < len(subRegionMarkers) {
		return nil, errors.Newf("feature encoding needs %d leading channels, got shape %v", len(subRegionMarkers), vol.Shape)
	}
	if vol.Shape[2] < encodeRowStart+encodeRows || vol.Shape[3] < encodeColStart+encodeCols {
		return nil, errors.Newf("volume %v too small for the %dx%d feature window at (%d,%d)",
			vol.Shape, encodeRows, encodeCols, encodeRowStart, encodeColStart)
	}

	out, err := vol.AppendPlane(1)
	if err != nil {
		return nil, err
	}
	plane := out.Shape[1] - 1

	for c, marker := range subRegionMarkers {
		vec, err := p.features.SubRegionVector(patient, marker)
		if err != nil {
			return nil, err
		}
		if len(vec) != encodeRows*encodeCols {
			return nil, errors.Newf("sub-region %q of patient %s has %d features, need %d",
				marker, patient, len(vec), encodeRows*encodeCols)
		}
		for r := 0; r < encodeRows; r++ {
			for col := 0; col < encodeCols; col++ {
				out.Set(vec[r*encodeCols+col], c, plane, encodeRowStart+r, encodeColStart+col)
			}
		}
	}
	return out, nil
}
