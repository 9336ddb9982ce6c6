// Package augment implements the synthetic data expansion transforms
// applied to loaded MRI sub-volumes: additive Gaussian noise, spatial
// flip, in-plane rotation and grid-based elastic deformation.
//
// An Augmentor owns the seeded generators. Each call advances the
// matching generator, so repeated application to the same sample does
// not repeat outcomes within one instance; the full sequence is
// reproducible across instances constructed with the same seed. The
// generators are not safe for concurrent use: parallel data-loading
// workers must each own a re-seeded Augmentor (see dataset.WorkerCopy).
package augment

import (
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"gbmset/internal/models"
	"gbmset/pkg/volume"
)

const (
	// NoiseVariance is the variance of the additive Gaussian noise.
	NoiseVariance = 0.01

	// DeformSigma is the standard deviation of the control-point
	// displacements of the elastic deformation grid, in voxels.
	DeformSigma = 5.0

	// DeformGridPoints is the number of control points per spatial axis
	// of the deformation grid.
	DeformGridPoints = 3
)

// Augmentor applies the expansion transforms using seeded generators.
type Augmentor struct {
	noise  distuv.Normal
	rotate *rand.Rand
	deform *rand.Rand
}

// New creates an Augmentor. The noise and rotation generators are both
// seeded with seed; the deformation generator derives its own stream
// from seed+2 so that all three sequences are reproducible.
func New(seed uint64) *Augmentor {
	return &Augmentor{
		noise: distuv.Normal{
			Mu:    0,
			Sigma: math.Sqrt(NoiseVariance),
			Src:   rand.NewSource(seed),
		},
		rotate: rand.New(rand.NewSource(seed)),
		deform: rand.New(rand.NewSource(seed + 2)),
	}
}

// Apply runs the single transform identified by aug on v and returns
// the transformed array. The channel layout determines whether the
// leading axis is a channel axis; the three spatial axes are always the
// trailing three.
func (a *Augmentor) Apply(v *volume.Volume, aug models.Augmentation, layout models.ChannelLayout) (*volume.Volume, error) {
	switch aug {
	case models.AugFlip:
		return a.Flip(v, layout)
	case models.AugRotate:
		return a.Rotate(v, layout)
	case models.AugNoise:
		return a.Noise(v)
	case models.AugDeform:
		return a.Deform(v, layout)
	default:
		return nil, errors.Newf("cannot apply augmentation %q", aug)
	}
}

// spatialDims validates that v matches the layout (a leading channel
// axis ahead of three spatial axes, or three spatial axes alone) and
// returns the channel count and spatial dimensions.
func spatialDims(v *volume.Volume, layout models.ChannelLayout) (channels, depth, height, width int, err error) {
	if layout.HasChannelAxis() {
		if v.Rank() != 4 {
			return 0, 0, 0, 0, errors.Newf("layout expects a channel axis, volume has shape %v", v.Shape)
		}
		return v.Shape[0], v.Shape[1], v.Shape[2], v.Shape[3], nil
	}
	if v.Rank() != 3 {
		return 0, 0, 0, 0, errors.Newf("layout expects three spatial axes, volume has shape %v", v.Shape)
	}
	return 1, v.Shape[0], v.Shape[1], v.Shape[2], nil
}

// Noise adds Gaussian noise drawn from the noise generator to every
// element, regardless of channel layout.
func (a *Augmentor) Noise(v *volume.Volume) (*volume.Volume, error) {
	out := v.Clone()
	for i := range out.Data {
		out.Data[i] += a.noise.Rand()
	}
	return out, nil
}

// Flip mirrors the array along all three spatial axes simultaneously,
// returning an independent copy.
func (a *Augmentor) Flip(v *volume.Volume, layout models.ChannelLayout) (*volume.Volume, error) {
	channels, depth, height, width, err := spatialDims(v, layout)
	if err != nil {
		return nil, err
	}
	out := &volume.Volume{
		Data:  make([]float64, len(v.Data)),
		Shape: append([]int(nil), v.Shape...),
	}
	plane := height * width
	block := depth * plane
	for c := 0; c < channels; c++ {
		src := v.Data[c*block : (c+1)*block]
		dst := out.Data[c*block : (c+1)*block]
		for d := 0; d < depth; d++ {
			for h := 0; h < height; h++ {
				for w := 0; w < width; w++ {
					dst[d*plane+h*width+w] = src[(depth-1-d)*plane+(height-1-h)*width+(width-1-w)]
				}
			}
		}
	}
	return out, nil
}

// Rotate draws an integer angle in [-180, 180) from the rotation
// generator and rotates every in-plane (last two axes) slice by that
// angle about the plane center, with bilinear sampling and zero fill
// outside the source. Intensities are carried through unchanged.
func (a *Augmentor) Rotate(v *volume.Volume, layout models.ChannelLayout) (*volume.Volume, error) {
	channels, depth, height, width, err := spatialDims(v, layout)
	if err != nil {
		return nil, err
	}
	angle := a.rotate.Intn(360) - 180

	theta := float64(angle) * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	cy := float64(height-1) / 2
	cx := float64(width-1) / 2

	out := &volume.Volume{
		Data:  make([]float64, len(v.Data)),
		Shape: append([]int(nil), v.Shape...),
	}
	plane := height * width
	for c := 0; c < channels; c++ {
		for d := 0; d < depth; d++ {
			src := v.Data[(c*depth+d)*plane : (c*depth+d+1)*plane]
			dst := out.Data[(c*depth+d)*plane : (c*depth+d+1)*plane]
			rotatePlane(src, dst, height, width, cy, cx, sin, cos)
		}
	}
	return out, nil
}

// rotatePlane fills dst with src rotated about (cy, cx) using inverse
// mapping and bilinear interpolation.
func rotatePlane(src, dst []float64, height, width int, cy, cx, sin, cos float64) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Inverse-rotate the output coordinate into the source.
			dy := float64(y) - cy
			dx := float64(x) - cx
			sy := cy + dy*cos - dx*sin
			sx := cx + dy*sin + dx*cos

			y0 := int(math.Floor(sy))
			x0 := int(math.Floor(sx))
			fy := sy - float64(y0)
			fx := sx - float64(x0)

			var acc float64
			for _, corner := range [4][3]float64{
				{0, 0, (1 - fy) * (1 - fx)},
				{0, 1, (1 - fy) * fx},
				{1, 0, fy * (1 - fx)},
				{1, 1, fy * fx},
			} {
				yy := y0 + int(corner[0])
				xx := x0 + int(corner[1])
				if yy >= 0 && yy < height && xx >= 0 && xx < width {
					acc += corner[2] * src[yy*width+xx]
				}
			}
			dst[y*width+x] = acc
		}
	}
}

// Deform applies a grid-based random elastic deformation: a
// DeformGridPoints³ grid of control-point displacements is drawn per
// spatial axis from the deformation generator, upsampled to a dense
// displacement field by trilinear interpolation, and the source volume
// is resampled at the displaced coordinates with nearest-neighbor
// lookup. All channels share one displacement field.
func (a *Augmentor) Deform(v *volume.Volume, layout models.ChannelLayout) (*volume.Volume, error) {
	channels, depth, height, width, err := spatialDims(v, layout)
	if err != nil {
		return nil, err
	}

	const p = DeformGridPoints
	var grid [3][p * p * p]float64
	for axis := 0; axis < 3; axis++ {
		for i := range grid[axis] {
			grid[axis][i] = a.deform.NormFloat64() * DeformSigma
		}
	}

	out := &volume.Volume{
		Data:  make([]float64, len(v.Data)),
		Shape: append([]int(nil), v.Shape...),
	}
	plane := height * width
	block := depth * plane
	dims := [3]int{depth, height, width}
	for d := 0; d < depth; d++ {
		for h := 0; h < height; h++ {
			for w := 0; w < width; w++ {
				pos := [3]int{d, h, w}
				var disp [3]float64
				for axis := 0; axis < 3; axis++ {
					disp[axis] = sampleGrid(&grid[axis], pos, dims)
				}

				// Nearest-neighbor lookup at the displaced coordinate,
				// zero outside the volume.
				sd := int(math.Round(float64(d) + disp[0]))
				sh := int(math.Round(float64(h) + disp[1]))
				sw := int(math.Round(float64(w) + disp[2]))
				if sd < 0 || sd >= depth || sh < 0 || sh >= height || sw < 0 || sw >= width {
					continue
				}
				srcOff := sd*plane + sh*width + sw
				dstOff := d*plane + h*width + w
				for c := 0; c < channels; c++ {
					out.Data[c*block+dstOff] = v.Data[c*block+srcOff]
				}
			}
		}
	}
	return out, nil
}

// sampleGrid trilinearly interpolates one control-point grid at a voxel
// position. The grid spans the full volume extent along each axis.
func sampleGrid(grid *[DeformGridPoints * DeformGridPoints * DeformGridPoints]float64, pos, dims [3]int) float64 {
	const p = DeformGridPoints
	var g [3]float64
	var g0 [3]int
	var frac [3]float64
	for axis := 0; axis < 3; axis++ {
		if dims[axis] > 1 {
			g[axis] = float64(pos[axis]) / float64(dims[axis]-1) * float64(p-1)
		}
		g0[axis] = int(g[axis])
		if g0[axis] > p-2 {
			g0[axis] = p - 2
		}
		frac[axis] = g[axis] - float64(g0[axis])
	}

	var acc float64
	for dz := 0; dz < 2; dz++ {
		wz := 1 - frac[0]
		if dz == 1 {
			wz = frac[0]
		}
		for dy := 0; dy < 2; dy++ {
			wy := 1 - frac[1]
			if dy == 1 {
				wy = frac[1]
			}
			for dx := 0; dx < 2; dx++ {
				wx := 1 - frac[2]
				if dx == 1 {
					wx = frac[2]
				}
				idx := (g0[0]+dz)*p*p + (g0[1]+dy)*p + (g0[2] + dx)
				acc += wz * wy * wx * grid[idx]
			}
		}
	}
	return acc
}
