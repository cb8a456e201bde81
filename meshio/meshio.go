// Package meshio reads and writes triangulated surface meshes in the
// OBJ, OFF and PLY interchange formats. Only vertex positions and
// triangular face connectivity are interpreted; other attributes are
// skipped on read and never written. The format is selected by file
// extension.
package meshio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
)

var (
	// ErrUnsupportedFormat reports a file extension no codec handles.
	ErrUnsupportedFormat = errors.New("meshio: unsupported mesh format")
	// ErrNonTriangular reports a face with other than three vertices.
	// Inputs must be triangulated upstream.
	ErrNonTriangular = errors.New("meshio: mesh is not triangular")
)

// WriteOptions control output encoding.
type WriteOptions struct {
	// Precision is the number of significant digits written for
	// coordinates. Zero selects 17, which round-trips float64.
	Precision int
	// BinaryPLY selects binary little-endian PLY output instead of
	// ASCII. Ignored by the other formats.
	BinaryPLY bool
}

func (o WriteOptions) precision() int {
	if o.Precision <= 0 {
		return 17
	}
	return o.Precision
}

// Read loads a triangulated mesh from path, dispatching on the file
// extension. An input without faces is rejected with mesh.ErrEmptyMesh.
func Read(path string) (*mesh.Mesh, error) {
	switch ext(path) {
	case ".obj", ".off", ".ply":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext(path))
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	defer fp.Close()
	var m *mesh.Mesh
	switch ext(path) {
	case ".obj":
		m, err = ReadOBJ(fp)
	case ".off":
		m, err = ReadOFF(fp)
	case ".ply":
		m, err = ReadPLY(fp)
	}
	if err != nil {
		return nil, fmt.Errorf("meshio: reading %s: %w", path, err)
	}
	if m.NumFaces() == 0 {
		return nil, fmt.Errorf("meshio: %s: %w", path, mesh.ErrEmptyMesh)
	}
	return m, nil
}

// Write stores m at path, dispatching on the file extension.
func Write(path string, m *mesh.Mesh, opts WriteOptions) error {
	switch ext(path) {
	case ".obj", ".off", ".ply":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext(path))
	}
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	switch ext(path) {
	case ".obj":
		err = WriteOBJ(fp, m, opts)
	case ".off":
		err = WriteOFF(fp, m, opts)
	case ".ply":
		err = WritePLY(fp, m, opts)
	}
	if err != nil {
		fp.Close()
		return fmt.Errorf("meshio: writing %s: %w", path, err)
	}
	return fp.Close()
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// ftoa formats a coordinate with the requested significant digits.
func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'g', prec, 64)
}

func parseFloats(fields []string) ([3]float64, error) {
	var out [3]float64
	if len(fields) < 3 {
		return out, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// writeAll writes s fully or returns the first error.
func writeAll(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
