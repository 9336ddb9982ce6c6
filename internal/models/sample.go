package models

import (
	"fmt"
)

// Augmentation identifies one of the synthetic data expansion transforms
// applied to a patient volume. Real (on-disk) samples carry AugNone.
type Augmentation int

const (
	AugNone Augmentation = iota
	AugNoise
	AugFlip
	AugRotate
	AugDeform
)

// String returns the short name used in expanded sample listings,
// e.g. "noise" or "flip".
func (a Augmentation) String() string {
	switch a {
	case AugNone:
		return ""
	case AugNoise:
		return "noise"
	case AugFlip:
		return "flip"
	case AugRotate:
		return "rotate"
	case AugDeform:
		return "deform"
	default:
		return fmt.Sprintf("augmentation(%d)", int(a))
	}
}

// ParseAugmentation maps a short name back to its Augmentation value.
func ParseAugmentation(name string) (Augmentation, error) {
	switch name {
	case "noise":
		return AugNoise, nil
	case "flip":
		return AugFlip, nil
	case "rotate":
		return AugRotate, nil
	case "deform":
		return AugDeform, nil
	default:
		return AugNone, fmt.Errorf("unknown augmentation %q", name)
	}
}

// SampleRef identifies one sample in the (possibly expanded) index.
// Patient is the real on-disk identifier; Aug is AugNone for real samples
// and the single applied transform for virtual ones. Keeping the pair
// explicit avoids suffix-parsing patient identifiers that may themselves
// contain the separator character.
type SampleRef struct {
	Patient string
	Aug     Augmentation
}

// String renders the listing form: "<patient>" for real samples and
// "<patient>_<kind>" for virtual ones.
func (r SampleRef) String() string {
	if r.Aug == AugNone {
		return r.Patient
	}
	return r.Patient + "_" + r.Aug.String()
}

// IsVirtual reports whether the sample is a synthetic expansion of a
// real patient volume.
func (r SampleRef) IsVirtual() bool {
	return r.Aug != AugNone
}

// LabelEntry pairs a sample reference with its label. The label table is
// an ordered slice of entries; the order fixes the index-to-sample
// correspondence used by positional access and must never change once
// the table is built.
type LabelEntry struct {
	Ref   SampleRef
	Label float64
}

// ChannelLayout enumerates the closed set of ways a loaded patient array
// is assembled into a sample tensor. The loader and the augmentor both
// consult the layout instead of branching on raw channel counts.
type ChannelLayout int

const (
	// LayoutWholeTumor selects only the whole-tumor slice (raw axis 3)
	// and drops the leading axis entirely.
	LayoutWholeTumor ChannelLayout = iota

	// LayoutSubRegions keeps the three named tumor sub-regions
	// (raw axes 0-2) as channels.
	LayoutSubRegions

	// LayoutSubRegionsWhole keeps the three sub-regions plus the
	// whole-tumor slice (raw axes 0,1,2,4).
	LayoutSubRegionsWhole

	// LayoutFull keeps all five raw slices unchanged.
	LayoutFull

	// LayoutModalities stacks the whole-tumor slice of each configured
	// modality along a new leading axis.
	LayoutModalities
)

// LayoutFor resolves the configured channel count and modality count to
// a layout. More than one modality always wins: channels become
// modalities regardless of the configured channel count.
func LayoutFor(nChannels, nModalities int) ChannelLayout {
	if nModalities > 1 {
		return LayoutModalities
	}
	switch {
	case nChannels == 1:
		return LayoutWholeTumor
	case nChannels == 4:
		return LayoutSubRegionsWhole
	case nChannels >= 5:
		return LayoutFull
	default:
		return LayoutSubRegions
	}
}

// Channels returns the leading-axis length of an assembled array under
// this layout. LayoutWholeTumor has no leading channel axis and reports 1.
func (l ChannelLayout) Channels(nModalities int) int {
	switch l {
	case LayoutWholeTumor:
		return 1
	case LayoutSubRegions:
		return 3
	case LayoutSubRegionsWhole:
		return 4
	case LayoutFull:
		return 5
	case LayoutModalities:
		return nModalities
	default:
		return 1
	}
}

// HasChannelAxis reports whether assembled arrays carry a leading
// channel axis ahead of the three spatial axes.
func (l ChannelLayout) HasChannelAxis() bool {
	return l != LayoutWholeTumor
}

// RawAxes returns the leading-axis indices selected from a raw on-disk
// array, or nil for layouts that do not subset the leading axis
// (LayoutWholeTumor squeezes axis 3; LayoutModalities takes axis 3 per
// modality).
func (l ChannelLayout) RawAxes() []int {
	switch l {
	case LayoutSubRegions:
		return []int{0, 1, 2}
	case LayoutSubRegionsWhole:
		return []int{0, 1, 2, 4}
	case LayoutFull:
		return []int{0, 1, 2, 3, 4}
	default:
		return nil
	}
}
