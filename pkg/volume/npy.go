package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// NumPy .npy format, version 1.0:
//
//	\x93NUMPY <major> <minor> <header-len uint16 LE> <header dict> <raw data>
//
// The header dict is an ASCII python literal such as
//
//	{'descr': '<f8', 'fortran_order': False, 'shape': (70, 86, 86), }
//
// padded with spaces to a 64-byte boundary and terminated by a newline.
// The codec here reads little-endian float32/float64 C-order arrays of
// any rank, which covers the per-patient sub-volume files, and writes
// float64 only.

var npyMagic = [6]byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// ReadNPY reads a .npy array file into a Volume.
func ReadNPY(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open array file %s", path)
	}
	defer f.Close()

	v, err := readNPY(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read array file %s", path)
	}
	return v, nil
}

func readNPY(r io.Reader) (*Volume, error) {
	var magic [6]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	if magic != npyMagic {
		return nil, errors.Newf("bad magic %q, not a .npy file", magic[:])
	}

	var version [2]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, errors.Wrap(err, "reading version")
	}

	// Version 1 uses a 2-byte header length, versions 2 and 3 use 4 bytes.
	var headerLen int
	switch version[0] {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, errors.Wrap(err, "reading header length")
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, errors.Wrap(err, "reading header length")
		}
		headerLen = int(n)
	default:
		return nil, errors.Newf("unsupported .npy version %d.%d", version[0], version[1])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	descr, fortran, shape, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}
	if fortran {
		return nil, errors.New("fortran-order arrays are not supported")
	}

	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]float64, n)

	switch descr {
	case "<f8":
		buf := make([]byte, 8*1024)
		for i := 0; i < n; {
			chunk := len(buf)
			if rem := (n - i) * 8; rem < chunk {
				chunk = rem
			}
			if _, err := io.ReadFull(r, buf[:chunk]); err != nil {
				return nil, errors.Wrap(err, "reading float64 payload")
			}
			for off := 0; off < chunk; off += 8 {
				data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
				i++
			}
		}
	case "<f4":
		buf := make([]byte, 4*1024)
		for i := 0; i < n; {
			chunk := len(buf)
			if rem := (n - i) * 4; rem < chunk {
				chunk = rem
			}
			if _, err := io.ReadFull(r, buf[:chunk]); err != nil {
				return nil, errors.Wrap(err, "reading float32 payload")
			}
			for off := 0; off < chunk; off += 4 {
				data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
				i++
			}
		}
	default:
		return nil, errors.Newf("unsupported dtype %q (want <f8 or <f4)", descr)
	}

	return &Volume{Data: data, Shape: shape}, nil
}

// parseHeader extracts descr, fortran_order and shape from the header
// dict literal.
func parseHeader(header string) (descr string, fortran bool, shape []int, err error) {
	descr, err = quotedValue(header, "'descr':")
	if err != nil {
		return "", false, nil, err
	}

	switch {
	case strings.Contains(header, "'fortran_order': False"):
		fortran = false
	case strings.Contains(header, "'fortran_order': True"):
		fortran = true
	default:
		return "", false, nil, errors.Newf("header missing fortran_order: %q", header)
	}

	open := strings.Index(header, "'shape':")
	if open < 0 {
		return "", false, nil, errors.Newf("header missing shape: %q", header)
	}
	lp := strings.Index(header[open:], "(")
	rp := strings.Index(header[open:], ")")
	if lp < 0 || rp < 0 || rp < lp {
		return "", false, nil, errors.Newf("malformed shape tuple in header %q", header)
	}
	tuple := header[open+lp+1 : open+rp]
	for _, part := range strings.Split(tuple, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, convErr := strconv.Atoi(part)
		if convErr != nil {
			return "", false, nil, errors.Wrapf(convErr, "malformed shape tuple in header %q", header)
		}
		shape = append(shape, dim)
	}
	if len(shape) == 0 {
		return "", false, nil, errors.Newf("empty shape tuple in header %q", header)
	}
	return descr, fortran, shape, nil
}

func quotedValue(header, key string) (string, error) {
	at := strings.Index(header, key)
	if at < 0 {
		return "", errors.Newf("header missing %s: %q", key, header)
	}
	rest := header[at+len(key):]
	first := strings.Index(rest, "'")
	if first < 0 {
		return "", errors.Newf("malformed %s in header %q", key, header)
	}
	second := strings.Index(rest[first+1:], "'")
	if second < 0 {
		return "", errors.Newf("malformed %s in header %q", key, header)
	}
	return rest[first+1 : first+1+second], nil
}

// WriteNPY writes a volume to path as a version 1.0 little-endian
// float64 .npy file.
func WriteNPY(path string, v *Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create array file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeNPY(w, v); err != nil {
		return errors.Wrapf(err, "failed to write array file %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write array file %s", path)
	}
	return nil
}

func writeNPY(w io.Writer, v *Volume) error {
	dims := make([]string, len(v.Shape))
	for i, s := range v.Shape {
		dims[i] = strconv.Itoa(s)
	}
	tuple := strings.Join(dims, ", ")
	if len(v.Shape) == 1 {
		tuple += ","
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", tuple)

	// Pad with spaces so the full preamble is a multiple of 64 bytes,
	// newline last.
	preamble := 6 + 2 + 2
	pad := 64 - (preamble+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	if _, err := w.Write(npyMagic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	buf := make([]byte, 8*1024)
	for i := 0; i < len(v.Data); {
		chunk := 0
		for chunk+8 <= len(buf) && i < len(v.Data) {
			binary.LittleEndian.PutUint64(buf[chunk:], math.Float64bits(v.Data[i]))
			chunk += 8
			i++
		}
		if _, err := w.Write(buf[:chunk]); err != nil {
			return err
		}
	}
	return nil
}
