package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Wavefront OBJ. Faces must be triangles; texture and normal
// references inside face tokens are accepted and discarded.

// ReadOBJ parses an OBJ document.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	var positions []r3.Vec
	var faces [][3]int
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			positions = append(positions, r3.Vec{X: p[0], Y: p[1], Z: p[2]})
		case "f":
			refs := fields[1:]
			if len(refs) != 3 {
				return nil, fmt.Errorf("obj line %d: face with %d vertices: %w",
					line, len(refs), ErrNonTriangular)
			}
			var f [3]int
			for i, ref := range refs {
				idx, err := objIndex(ref, len(positions))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", line, err)
				}
				f[i] = idx
			}
			faces = append(faces, f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return mesh.FromBuffers(positions, faces)
}

// objIndex resolves a face vertex token ("7", "7/1", "7//2", "-1") to
// a zero-based vertex index.
func objIndex(token string, numVerts int) (int, error) {
	if i := strings.IndexByte(token, '/'); i >= 0 {
		token = token[:i]
	}
	idx, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", token)
	}
	switch {
	case idx > 0 && idx <= numVerts:
		return idx - 1, nil
	case idx < 0 && -idx <= numVerts:
		return numVerts + idx, nil
	}
	return 0, fmt.Errorf("vertex reference %d out of range", idx)
}

// WriteOBJ writes m as an OBJ document.
func WriteOBJ(w io.Writer, m *mesh.Mesh, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	prec := opts.precision()
	verts, faces := m.Buffers()
	for _, p := range verts {
		err := writeAll(bw, "v "+ftoa(p.X, prec)+" "+ftoa(p.Y, prec)+" "+ftoa(p.Z, prec)+"\n")
		if err != nil {
			return err
		}
	}
	for _, f := range faces {
		err := writeAll(bw, fmt.Sprintf("f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
