// Package visualization renders in-plane slices of assembled sample
// tensors as grayscale JPEG images, for inspecting what the provider
// feeds a training loop: raw channels, augmented variants and the
// radiomic feature overlay plane.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"gbmset/pkg/volume"
)

// Viewer extracts displayable slices from one sample tensor. The tensor
// is either channel-stacked (channels, depth, height, width) or a bare
// volume (depth, height, width); intensities are normalized to the
// tensor's own range before rendering.
type Viewer struct {
	vol *volume.Volume

	// channel-aware dimensions of the tensor
	channels int
	depth    int
	height   int
	width    int

	// intensity range used for display normalization
	lo, hi float64
}

// NewViewer creates a viewer for a sample tensor. Tensors of rank 3 are
// treated as a single channel; rank-4 tensors expose every leading
// channel. A leading unit axis (squeezed whole-tumor samples) works the
// same way.
func NewViewer(vol *volume.Volume) (*Viewer, error) {
	v := &Viewer{vol: vol}
	switch vol.Rank() {
	case 3:
		v.channels = 1
		v.depth, v.height, v.width = vol.Shape[0], vol.Shape[1], vol.Shape[2]
	case 4:
		v.channels = vol.Shape[0]
		v.depth, v.height, v.width = vol.Shape[1], vol.Shape[2], vol.Shape[3]
	default:
		return nil, fmt.Errorf("cannot view a tensor of shape %v, need 3 or 4 axes", vol.Shape)
	}

	v.lo, v.hi = math.Inf(1), math.Inf(-1)
	for _, val := range vol.Data {
		if val < v.lo {
			v.lo = val
		}
		if val > v.hi {
			v.hi = val
		}
	}
	return v, nil
}

// Channels returns the number of leading channels exposed by the viewer.
func (v *Viewer) Channels() int { return v.channels }

// Depth returns the number of in-plane slices per channel.
func (v *Viewer) Depth() int { return v.depth }

// ExtractSlice renders one in-plane (height × width) slice of one
// channel as a 16-bit grayscale image.
func (v *Viewer) ExtractSlice(channel, position int) (image.Image, error) {
	if channel < 0 || channel >= v.channels {
		return nil, fmt.Errorf("channel %d out of range [0, %d)", channel, v.channels)
	}
	if position < 0 || position >= v.depth {
		return nil, fmt.Errorf("position %d out of range [0, %d)", position, v.depth)
	}

	scale := 0.0
	if v.hi > v.lo {
		scale = 65535 / (v.hi - v.lo)
	}

	plane := v.height * v.width
	base := (channel*v.depth + position) * plane
	img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			val := (v.vol.Data[base+y*v.width+x] - v.lo) * scale
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, val)))})
		}
	}
	return img, nil
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence renders and saves every in-plane slice of one
// channel into outputDir, named slice_c<channel>_<position>.jpg.
func (v *Viewer) SaveSliceSequence(channel int, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < v.depth; pos++ {
		img, err := v.ExtractSlice(channel, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_c%d_%03d.jpg", channel, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
