package models

import (
	"testing"
)

func TestAugmentationNames(t *testing.T) {
	cases := map[Augmentation]string{
		AugNoise:  "noise",
		AugFlip:   "flip",
		AugRotate: "rotate",
		AugDeform: "deform",
	}
	for kind, name := range cases {
		if kind.String() != name {
			t.Errorf("Expected %q, got %q", name, kind.String())
		}
		parsed, err := ParseAugmentation(name)
		if err != nil {
			t.Errorf("ParseAugmentation(%q) failed: %v", name, err)
		}
		if parsed != kind {
			t.Errorf("ParseAugmentation(%q): expected %v, got %v", name, kind, parsed)
		}
	}

	if _, err := ParseAugmentation("blur"); err == nil {
		t.Error("Expected error for an unknown augmentation name")
	}
}

func TestSampleRefString(t *testing.T) {
	real := SampleRef{Patient: "UPENN-GBM-00006_11"}
	if real.String() != "UPENN-GBM-00006_11" {
		t.Errorf("Unexpected real ref string %q", real.String())
	}
	if real.IsVirtual() {
		t.Error("Real ref reported as virtual")
	}

	virtual := SampleRef{Patient: "UPENN-GBM-00006_11", Aug: AugFlip}
	if virtual.String() != "UPENN-GBM-00006_11_flip" {
		t.Errorf("Unexpected virtual ref string %q", virtual.String())
	}
	if !virtual.IsVirtual() {
		t.Error("Virtual ref not reported as virtual")
	}
}

func TestLayoutFor(t *testing.T) {
	cases := []struct {
		channels   int
		modalities int
		want       ChannelLayout
	}{
		{1, 1, LayoutWholeTumor},
		{3, 1, LayoutSubRegions},
		{2, 1, LayoutSubRegions},
		{4, 1, LayoutSubRegionsWhole},
		{5, 1, LayoutFull},
		{1, 3, LayoutModalities},
		{4, 2, LayoutModalities},
	}
	for _, tc := range cases {
		got := LayoutFor(tc.channels, tc.modalities)
		if got != tc.want {
			t.Errorf("LayoutFor(%d, %d): expected %v, got %v", tc.channels, tc.modalities, tc.want, got)
		}
	}
}

func TestLayoutProperties(t *testing.T) {
	if LayoutWholeTumor.HasChannelAxis() {
		t.Error("Whole-tumor layout should not carry a channel axis")
	}
	if !LayoutModalities.HasChannelAxis() {
		t.Error("Modality layout should carry a channel axis")
	}

	if got := LayoutModalities.Channels(4); got != 4 {
		t.Errorf("Expected 4 modality channels, got %d", got)
	}
	if got := LayoutSubRegionsWhole.Channels(1); got != 4 {
		t.Errorf("Expected 4 sub-region channels, got %d", got)
	}

	axes := LayoutSubRegionsWhole.RawAxes()
	want := []int{0, 1, 2, 4}
	if len(axes) != len(want) {
		t.Fatalf("Expected raw axes %v, got %v", want, axes)
	}
	for i := range want {
		if axes[i] != want[i] {
			t.Errorf("Raw axis %d: expected %d, got %d", i, want[i], axes[i])
		}
	}
	if LayoutWholeTumor.RawAxes() != nil {
		t.Error("Whole-tumor layout should not select raw axes")
	}
	if LayoutModalities.RawAxes() != nil {
		t.Error("Modality layout should not select raw axes")
	}
}
