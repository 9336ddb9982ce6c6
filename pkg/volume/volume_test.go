package volume

import (
	"os"
	"path/filepath"
	"testing"
)

// sequentialVolume creates a volume whose elements count up from 0 in
// row-major order, which makes positional checks easy to read.
func sequentialVolume(shape ...int) *Volume {
	v := New(shape...)
	for i := range v.Data {
		v.Data[i] = float64(i)
	}
	return v
}

func TestNewAndIndexing(t *testing.T) {
	v := New(2, 3, 4)
	if v.NumElements() != 24 {
		t.Fatalf("Expected 24 elements, got %d", v.NumElements())
	}
	if v.Rank() != 3 {
		t.Errorf("Expected rank 3, got %d", v.Rank())
	}

	v.Set(7.5, 1, 2, 3)
	if got := v.At(1, 2, 3); got != 7.5 {
		t.Errorf("Expected 7.5 at (1,2,3), got %f", got)
	}
	if got := v.Data[1*12+2*4+3]; got != 7.5 {
		t.Errorf("Expected row-major offset 23 to hold 7.5, got %f", got)
	}
}

func TestStrides(t *testing.T) {
	v := New(2, 3, 4)
	strides := v.Strides()
	expected := []int{12, 4, 1}
	for i := range expected {
		if strides[i] != expected[i] {
			t.Errorf("Stride %d: expected %d, got %d", i, expected[i], strides[i])
		}
	}
}

func TestFromData(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	v, err := FromData(data, 2, 3)
	if err != nil {
		t.Fatalf("FromData failed: %v", err)
	}
	if v.At(1, 2) != 6 {
		t.Errorf("Expected 6 at (1,2), got %f", v.At(1, 2))
	}

	if _, err := FromData(data, 2, 2); err == nil {
		t.Error("Expected error for mismatched data length")
	}
}

func TestReshape(t *testing.T) {
	v := sequentialVolume(2, 3, 4)
	r, err := v.Reshape(6, 4)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if r.Rank() != 2 || r.Shape[0] != 6 || r.Shape[1] != 4 {
		t.Errorf("Expected shape [6 4], got %v", r.Shape)
	}
	// Reshape shares the buffer; the element order is unchanged.
	if r.At(5, 3) != 23 {
		t.Errorf("Expected 23 at (5,3), got %f", r.At(5, 3))
	}

	if _, err := v.Reshape(5, 5); err == nil {
		t.Error("Expected error for element count mismatch")
	}
}

func TestTakeAxis0(t *testing.T) {
	v := sequentialVolume(4, 2, 3)
	sub, err := v.TakeAxis0(2)
	if err != nil {
		t.Fatalf("TakeAxis0 failed: %v", err)
	}
	if sub.Rank() != 2 || sub.Shape[0] != 2 || sub.Shape[1] != 3 {
		t.Errorf("Expected shape [2 3], got %v", sub.Shape)
	}
	if sub.At(0, 0) != 12 {
		t.Errorf("Expected 12 at (0,0), got %f", sub.At(0, 0))
	}

	// Taking a sub-array must copy, not alias.
	sub.Set(-1, 0, 0)
	if v.At(2, 0, 0) != 12 {
		t.Error("TakeAxis0 aliased the source buffer")
	}

	if _, err := v.TakeAxis0(4); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestSelectAxis0(t *testing.T) {
	v := sequentialVolume(5, 2, 2)
	sel, err := v.SelectAxis0([]int{0, 1, 2, 4})
	if err != nil {
		t.Fatalf("SelectAxis0 failed: %v", err)
	}
	if sel.Shape[0] != 4 {
		t.Errorf("Expected leading axis 4, got %v", sel.Shape)
	}
	// The fourth selected block is source block 4.
	if sel.At(3, 0, 0) != 16 {
		t.Errorf("Expected 16 at (3,0,0), got %f", sel.At(3, 0, 0))
	}

	if _, err := v.SelectAxis0([]int{5}); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestStack(t *testing.T) {
	a := sequentialVolume(2, 3)
	b := sequentialVolume(2, 3)
	for i := range b.Data {
		b.Data[i] += 100
	}

	s, err := Stack([]*Volume{a, b})
	if err != nil {
		t.Fatalf("Stack failed: %v", err)
	}
	if s.Rank() != 3 || s.Shape[0] != 2 {
		t.Errorf("Expected shape [2 2 3], got %v", s.Shape)
	}
	if s.At(1, 0, 0) != 100 {
		t.Errorf("Expected 100 at (1,0,0), got %f", s.At(1, 0, 0))
	}

	c := New(3, 3)
	if _, err := Stack([]*Volume{a, c}); err == nil {
		t.Error("Expected error for mismatched shapes")
	}
}

func TestAppendPlane(t *testing.T) {
	v := sequentialVolume(3, 2, 2, 2)
	grown, err := v.AppendPlane(1)
	if err != nil {
		t.Fatalf("AppendPlane failed: %v", err)
	}
	if grown.Shape[1] != 3 {
		t.Errorf("Expected shape [3 3 2 2], got %v", grown.Shape)
	}

	// Original data is preserved in the leading planes of each channel.
	for c := 0; c < 3; c++ {
		for d := 0; d < 2; d++ {
			for h := 0; h < 2; h++ {
				for w := 0; w < 2; w++ {
					if grown.At(c, d, h, w) != v.At(c, d, h, w) {
						t.Fatalf("Data at (%d,%d,%d,%d) changed after AppendPlane", c, d, h, w)
					}
				}
			}
		}
	}
	// The appended plane is zero-filled.
	for c := 0; c < 3; c++ {
		for h := 0; h < 2; h++ {
			for w := 0; w < 2; w++ {
				if grown.At(c, 2, h, w) != 0 {
					t.Errorf("Appended plane not zero at (%d,2,%d,%d)", c, h, w)
				}
			}
		}
	}
}

func TestExpandDims0(t *testing.T) {
	v := sequentialVolume(2, 3)
	e := v.ExpandDims0()
	if e.Rank() != 3 || e.Shape[0] != 1 {
		t.Errorf("Expected shape [1 2 3], got %v", e.Shape)
	}
	if e.At(0, 1, 2) != 5 {
		t.Errorf("Expected 5 at (0,1,2), got %f", e.At(0, 1, 2))
	}
}

func TestNPYRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "gbmset-volume-test-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	v := sequentialVolume(5, 4, 6, 6)
	v.Data[0] = -0.125
	path := filepath.Join(dir, "P001_FLAIR.npy")
	if err := WriteNPY(path, v); err != nil {
		t.Fatalf("WriteNPY failed: %v", err)
	}

	r, err := ReadNPY(path)
	if err != nil {
		t.Fatalf("ReadNPY failed: %v", err)
	}
	if !r.EqualApprox(v, 0) {
		t.Error("Round-tripped volume differs from the original")
	}
}

func TestNPYRejectsBadMagic(t *testing.T) {
	dir, err := os.MkdirTemp("", "gbmset-volume-test-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bogus.npy")
	if err := os.WriteFile(path, []byte("not an array"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := ReadNPY(path); err == nil {
		t.Error("Expected error for non-npy content")
	}
}

func TestNPYMissingFile(t *testing.T) {
	if _, err := ReadNPY(filepath.Join(os.TempDir(), "gbmset-does-not-exist.npy")); err == nil {
		t.Error("Expected error for missing file")
	}
}
