package dataset

import (
	"github.com/cockroachdb/errors"

	"gbmset/internal/models"
	"gbmset/pkg/volume"
)

// wholeTumorAxis is the leading-axis index of the whole-tumor slice in
// the stored per-patient arrays: axes 0-2 are the named sub-regions,
// axis 3 the whole tumor, axis 4 an optional extra slice.
const wholeTumorAxis = 3

// loadSample assembles the sample array for single-modality use: the
// raw array is loaded, the leading axis is subset according to the
// channel layout (or squeezed to the whole-tumor slice), the sample's
// augmentation is applied if it is virtual, and, under sectionation,
// the result is reshaped to the configured dimensions.
func (p *Provider) loadSample(ref models.SampleRef) (*volume.Volume, error) {
	raw, err := volume.ReadNPY(p.arrayPath(ref, p.params.Modalities[0]))
	if err != nil {
		return nil, err
	}

	var vol *volume.Volume
	if axes := p.layout.RawAxes(); axes != nil {
		vol, err = raw.SelectAxis0(axes)
	} else {
		vol, err = raw.TakeAxis0(wholeTumorAxis)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select channels from %s", ref.Patient)
	}

	if vol, err = p.maybeAugment(vol, ref); err != nil {
		return nil, err
	}
	return p.maybeSectionate(vol)
}

// loadModalityStack assembles the sample array for multi-modality use:
// the whole-tumor slice of every configured modality is loaded and
// stacked along a new leading axis, so channels are modalities instead
// of tumor sub-regions. The leading axis always has one entry per
// configured modality.
func (p *Provider) loadModalityStack(ref models.SampleRef) (*volume.Volume, error) {
	slices := make([]*volume.Volume, 0, len(p.params.Modalities))
	for _, modality := range p.params.Modalities {
		raw, err := volume.ReadNPY(p.arrayPath(ref, modality))
		if err != nil {
			return nil, err
		}
		whole, err := raw.TakeAxis0(wholeTumorAxis)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to take the whole-tumor slice of %s modality %s", ref.Patient, modality)
		}
		slices = append(slices, whole)
	}

	vol, err := volume.Stack(slices)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stack modalities of %s", ref.Patient)
	}

	if vol, err = p.maybeAugment(vol, ref); err != nil {
		return nil, err
	}
	return p.maybeSectionate(vol)
}

// maybeAugment routes virtual samples through the augmentor. Real
// samples, and virtual samples whose kind is not configured, pass
// through untouched.
func (p *Provider) maybeAugment(vol *volume.Volume, ref models.SampleRef) (*volume.Volume, error) {
	if !p.params.Augment || !ref.IsVirtual() || !p.kindConfigured(ref.Aug) {
		return vol, nil
	}
	out, err := p.aug.Apply(vol, ref.Aug, p.layout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to apply %s", ref.Aug)
	}
	return out, nil
}

// maybeSectionate reshapes the assembled array to the configured
// spatial dimensions, with a trailing channel axis when the layout
// carries more than one channel.
func (p *Provider) maybeSectionate(vol *volume.Volume) (*volume.Volume, error) {
	if !p.params.Sectionate {
		return vol, nil
	}
	dims := p.params.Dims
	if p.layout.HasChannelAxis() {
		return vol.Reshape(dims[0], dims[1], dims[2], p.layout.Channels(len(p.params.Modalities)))
	}
	return vol.Reshape(dims[0], dims[1], dims[2])
}
