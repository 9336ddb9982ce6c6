// Package volume provides dense n-dimensional float64 arrays used to hold
// MRI sub-volumes and assembled sample tensors, together with the NumPy
// .npy codec the on-disk per-patient arrays are stored in.
//
// Data is kept as a flat row-major (C order) buffer with an explicit shape,
// mirroring how reconstruction volumes are conventionally held as a 1D
// array plus dimensions.
package volume

import (
	"github.com/cockroachdb/errors"
)

// Volume is a dense n-dimensional array in row-major order.
type Volume struct {
	// Data is the flat backing buffer, length equal to the product of Shape.
	Data []float64

	// Shape holds the axis lengths, outermost first.
	Shape []int
}

// New creates a zero-filled volume with the given shape.
func New(shape ...int) *Volume {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Volume{
		Data:  make([]float64, n),
		Shape: append([]int(nil), shape...),
	}
}

// FromData wraps an existing buffer. The buffer length must match the
// product of the shape.
func FromData(data []float64, shape ...int) (*Volume, error) {
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, errors.Newf("invalid axis length %d in shape %v", s, shape)
		}
		n *= s
	}
	if len(data) != n {
		return nil, errors.Newf("data length %d does not match shape %v (%d elements)", len(data), shape, n)
	}
	return &Volume{Data: data, Shape: append([]int(nil), shape...)}, nil
}

// Rank returns the number of axes.
func (v *Volume) Rank() int { return len(v.Shape) }

// NumElements returns the total element count.
func (v *Volume) NumElements() int { return len(v.Data) }

// Strides returns the row-major stride of each axis in elements.
func (v *Volume) Strides() []int {
	strides := make([]int, len(v.Shape))
	acc := 1
	for i := len(v.Shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= v.Shape[i]
	}
	return strides
}

// Offset converts a multi-index into a flat buffer offset. Indices are
// not bounds-checked beyond what the buffer itself enforces.
func (v *Volume) Offset(idx ...int) int {
	off := 0
	acc := 1
	for i := len(v.Shape) - 1; i >= 0; i-- {
		off += idx[i] * acc
		acc *= v.Shape[i]
	}
	return off
}

// At returns the element at the given multi-index.
func (v *Volume) At(idx ...int) float64 {
	return v.Data[v.Offset(idx...)]
}

// Set stores a value at the given multi-index.
func (v *Volume) Set(val float64, idx ...int) {
	v.Data[v.Offset(idx...)] = val
}

// Clone returns a deep copy.
func (v *Volume) Clone() *Volume {
	out := &Volume{
		Data:  make([]float64, len(v.Data)),
		Shape: append([]int(nil), v.Shape...),
	}
	copy(out.Data, v.Data)
	return out
}

// Reshape returns a volume sharing this volume's buffer with a new shape.
// The element counts must match.
func (v *Volume) Reshape(shape ...int) (*Volume, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(v.Data) {
		return nil, errors.Newf("cannot reshape %v (%d elements) to %v (%d elements)",
			v.Shape, len(v.Data), shape, n)
	}
	return &Volume{Data: v.Data, Shape: append([]int(nil), shape...)}, nil
}

// ExpandDims0 returns a volume sharing this volume's buffer with a new
// leading axis of length one.
func (v *Volume) ExpandDims0() *Volume {
	shape := make([]int, 0, len(v.Shape)+1)
	shape = append(shape, 1)
	shape = append(shape, v.Shape...)
	return &Volume{Data: v.Data, Shape: shape}
}

// TakeAxis0 copies the i-th sub-array along the leading axis, dropping
// that axis. For a (5,70,86,86) array, TakeAxis0(3) yields (70,86,86).
func (v *Volume) TakeAxis0(i int) (*Volume, error) {
	if v.Rank() < 1 {
		return nil, errors.New("cannot take axis 0 of a rank-0 volume")
	}
	if i < 0 || i >= v.Shape[0] {
		return nil, errors.Newf("axis 0 index %d out of range for shape %v", i, v.Shape)
	}
	block := len(v.Data) / v.Shape[0]
	out := &Volume{
		Data:  make([]float64, block),
		Shape: append([]int(nil), v.Shape[1:]...),
	}
	copy(out.Data, v.Data[i*block:(i+1)*block])
	return out, nil
}

// SelectAxis0 copies the listed sub-arrays along the leading axis,
// preserving their order. The leading axis of the result has length
// len(indices).
func (v *Volume) SelectAxis0(indices []int) (*Volume, error) {
	if v.Rank() < 1 {
		return nil, errors.New("cannot select along axis 0 of a rank-0 volume")
	}
	block := len(v.Data) / v.Shape[0]
	shape := append([]int(nil), v.Shape...)
	shape[0] = len(indices)
	out := &Volume{
		Data:  make([]float64, block*len(indices)),
		Shape: shape,
	}
	for n, i := range indices {
		if i < 0 || i >= v.Shape[0] {
			return nil, errors.Newf("axis 0 index %d out of range for shape %v", i, v.Shape)
		}
		copy(out.Data[n*block:(n+1)*block], v.Data[i*block:(i+1)*block])
	}
	return out, nil
}

// Stack concatenates equally shaped volumes along a new leading axis.
func Stack(vols []*Volume) (*Volume, error) {
	if len(vols) == 0 {
		return nil, errors.New("cannot stack zero volumes")
	}
	base := vols[0].Shape
	block := vols[0].NumElements()
	for i, v := range vols[1:] {
		if !sameShape(base, v.Shape) {
			return nil, errors.Newf("stack shape mismatch: volume 0 is %v, volume %d is %v",
				base, i+1, v.Shape)
		}
	}
	shape := make([]int, 0, len(base)+1)
	shape = append(shape, len(vols))
	shape = append(shape, base...)
	out := &Volume{
		Data:  make([]float64, block*len(vols)),
		Shape: shape,
	}
	for n, v := range vols {
		copy(out.Data[n*block:(n+1)*block], v.Data)
	}
	return out, nil
}

// AppendPlane grows the given axis by one zero-filled hyperplane and
// returns the result as a new volume. For a (3,70,86,86) array,
// AppendPlane(1) yields (3,71,86,86) with the new plane at depth index 70
// of every channel.
func (v *Volume) AppendPlane(axis int) (*Volume, error) {
	if axis < 0 || axis >= v.Rank() {
		return nil, errors.Newf("axis %d out of range for shape %v", axis, v.Shape)
	}
	shape := append([]int(nil), v.Shape...)
	shape[axis]++
	out := New(shape...)

	// Copy in runs: outer iterates axes before the grown one, inner runs
	// are contiguous blocks spanning the grown axis and everything after.
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= v.Shape[i]
	}
	inner := 1
	for i := axis + 1; i < v.Rank(); i++ {
		inner *= v.Shape[i]
	}
	srcBlock := v.Shape[axis] * inner
	dstBlock := shape[axis] * inner
	for o := 0; o < outer; o++ {
		copy(out.Data[o*dstBlock:o*dstBlock+srcBlock], v.Data[o*srcBlock:(o+1)*srcBlock])
	}
	return out, nil
}

// EqualApprox reports whether two volumes have identical shapes and
// element-wise differences within tol.
func (v *Volume) EqualApprox(o *Volume, tol float64) bool {
	if !sameShape(v.Shape, o.Shape) {
		return false
	}
	for i := range v.Data {
		d := v.Data[i] - o.Data[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
