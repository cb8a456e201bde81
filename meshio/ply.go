package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Polygon File Format (PLY), ASCII and binary little-endian. Vertex
// properties other than x/y/z are skipped; faces must be triangles.

type plyProperty struct {
	name      string
	typ       string
	list      bool
	countType string
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

var plyTypeSize = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

// ReadPLY parses a PLY document.
func ReadPLY(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)
	binaryLE, elements, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}
	var positions []r3.Vec
	var faces [][3]int
	tok := &plyASCIITokens{br: br}
	for _, el := range elements {
		switch el.name {
		case "vertex":
			positions, err = readPLYVertices(br, tok, el, binaryLE)
		case "face":
			faces, err = readPLYFaces(br, tok, el, binaryLE)
		default:
			err = skipPLYElement(br, tok, el, binaryLE)
		}
		if err != nil {
			return nil, fmt.Errorf("ply: element %s: %w", el.name, err)
		}
	}
	return mesh.FromBuffers(positions, faces)
}

func readPLYHeader(br *bufio.Reader) (binaryLE bool, elements []plyElement, err error) {
	line, err := plyLine(br)
	if err != nil {
		return false, nil, err
	}
	if line != "ply" {
		return false, nil, fmt.Errorf("ply: bad magic %q", line)
	}
	for {
		line, err = plyLine(br)
		if err != nil {
			return false, nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
		case "format":
			if len(fields) < 2 {
				return false, nil, fmt.Errorf("ply: bad format line %q", line)
			}
			switch fields[1] {
			case "ascii":
			case "binary_little_endian":
				binaryLE = true
			default:
				return false, nil, fmt.Errorf("ply: unsupported format %q", fields[1])
			}
		case "element":
			if len(fields) != 3 {
				return false, nil, fmt.Errorf("ply: bad element line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return false, nil, err
			}
			elements = append(elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 {
				return false, nil, fmt.Errorf("ply: property before element")
			}
			el := &elements[len(elements)-1]
			switch {
			case len(fields) == 3:
				el.props = append(el.props, plyProperty{name: fields[2], typ: fields[1]})
			case len(fields) == 5 && fields[1] == "list":
				el.props = append(el.props, plyProperty{
					name: fields[4], typ: fields[3], list: true, countType: fields[2],
				})
			default:
				return false, nil, fmt.Errorf("ply: bad property line %q", line)
			}
		case "end_header":
			return binaryLE, elements, nil
		default:
			return false, nil, fmt.Errorf("ply: unexpected header line %q", line)
		}
	}
}

func readPLYVertices(br *bufio.Reader, tok *plyASCIITokens, el plyElement, binaryLE bool) ([]r3.Vec, error) {
	xi, yi, zi := -1, -1, -1
	for i, p := range el.props {
		if p.list {
			return nil, fmt.Errorf("unexpected list property %q", p.name)
		}
		switch p.name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, fmt.Errorf("missing coordinate properties")
	}
	positions := make([]r3.Vec, el.count)
	scratch := make([]float64, len(el.props))
	for i := 0; i < el.count; i++ {
		for j, p := range el.props {
			v, err := readPLYScalar(br, tok, p.typ, binaryLE)
			if err != nil {
				return nil, err
			}
			scratch[j] = v
		}
		positions[i] = r3.Vec{X: scratch[xi], Y: scratch[yi], Z: scratch[zi]}
	}
	return positions, nil
}

func readPLYFaces(br *bufio.Reader, tok *plyASCIITokens, el plyElement, binaryLE bool) ([][3]int, error) {
	faces := make([][3]int, 0, el.count)
	for i := 0; i < el.count; i++ {
		for _, p := range el.props {
			if !p.list {
				if _, err := readPLYScalar(br, tok, p.typ, binaryLE); err != nil {
					return nil, err
				}
				continue
			}
			n, err := readPLYScalar(br, tok, p.countType, binaryLE)
			if err != nil {
				return nil, err
			}
			count := int(n)
			idx := make([]int, count)
			for j := 0; j < count; j++ {
				v, err := readPLYScalar(br, tok, p.typ, binaryLE)
				if err != nil {
					return nil, err
				}
				idx[j] = int(v)
			}
			if p.name != "vertex_indices" && p.name != "vertex_index" {
				continue
			}
			if count != 3 {
				return nil, fmt.Errorf("face %d with %d vertices: %w", i, count, ErrNonTriangular)
			}
			faces = append(faces, [3]int{idx[0], idx[1], idx[2]})
		}
	}
	return faces, nil
}

func skipPLYElement(br *bufio.Reader, tok *plyASCIITokens, el plyElement, binaryLE bool) error {
	for i := 0; i < el.count; i++ {
		for _, p := range el.props {
			n := 1
			if p.list {
				c, err := readPLYScalar(br, tok, p.countType, binaryLE)
				if err != nil {
					return err
				}
				n = int(c)
			}
			for j := 0; j < n; j++ {
				if _, err := readPLYScalar(br, tok, p.typ, binaryLE); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// readPLYScalar reads one scalar of the named PLY type as float64.
// Binary floats are validated against NaN and infinities.
func readPLYScalar(br *bufio.Reader, tok *plyASCIITokens, typ string, binaryLE bool) (float64, error) {
	if !binaryLE {
		s, err := tok.next()
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	size, ok := plyTypeSize[typ]
	if !ok {
		return 0, fmt.Errorf("unknown type %q", typ)
	}
	var buf [8]byte
	if _, err := io.ReadFull(br, buf[:size]); err != nil {
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(binary.LittleEndian.Uint16(buf[:2]))), nil
	case "ushort", "uint16":
		return float64(binary.LittleEndian.Uint16(buf[:2])), nil
	case "int", "int32":
		return float64(int32(binary.LittleEndian.Uint32(buf[:4]))), nil
	case "uint", "uint32":
		return float64(binary.LittleEndian.Uint32(buf[:4])), nil
	case "float", "float32":
		f := math32.Float32frombits(binary.LittleEndian.Uint32(buf[:4]))
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return 0, fmt.Errorf("non-finite float value")
		}
		return float64(f), nil
	case "double", "float64":
		f := math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("non-finite double value")
		}
		return f, nil
	}
	return 0, fmt.Errorf("unknown type %q", typ)
}

// plyASCIITokens yields whitespace-separated tokens from the body of
// an ASCII PLY document.
type plyASCIITokens struct {
	br     *bufio.Reader
	queued []string
}

func (t *plyASCIITokens) next() (string, error) {
	for len(t.queued) == 0 {
		line, err := t.br.ReadString('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		t.queued = strings.Fields(line)
	}
	tok := t.queued[0]
	t.queued = t.queued[1:]
	return tok, nil
}

func plyLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if len(line) == 0 && err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// WritePLY writes m as a PLY document, ASCII by default or binary
// little-endian when requested. Binary output stores float32
// coordinates, so non-finite values after narrowing are rejected.
func WritePLY(w io.Writer, m *mesh.Mesh, opts WriteOptions) error {
	verts, faces := m.Buffers()
	if opts.BinaryPLY {
		return writeBinaryPLY(w, verts, faces)
	}
	bw := bufio.NewWriter(w)
	prec := opts.precision()
	header := fmt.Sprintf(`ply
format ascii 1.0
element vertex %d
property double x
property double y
property double z
element face %d
property list uchar int vertex_indices
end_header
`, len(verts), len(faces))
	if err := writeAll(bw, header); err != nil {
		return err
	}
	for _, p := range verts {
		err := writeAll(bw, ftoa(p.X, prec)+" "+ftoa(p.Y, prec)+" "+ftoa(p.Z, prec)+"\n")
		if err != nil {
			return err
		}
	}
	for _, f := range faces {
		err := writeAll(bw, fmt.Sprintf("3 %d %d %d\n", f[0], f[1], f[2]))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeBinaryPLY(w io.Writer, verts []r3.Vec, faces [][3]int) error {
	bw := bufio.NewWriter(w)
	header := fmt.Sprintf(`ply
format binary_little_endian 1.0
element vertex %d
property float x
property float y
property float z
element face %d
property list uchar int vertex_indices
end_header
`, len(verts), len(faces))
	if err := writeAll(bw, header); err != nil {
		return err
	}
	for i, p := range verts {
		c := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		if naNOrInf(c) {
			return fmt.Errorf("vertex %d has non-finite float32 coordinates", i)
		}
		if err := binary.Write(bw, binary.LittleEndian, c); err != nil {
			return err
		}
	}
	for _, f := range faces {
		if err := bw.WriteByte(3); err != nil {
			return err
		}
		idx := [3]int32{int32(f[0]), int32(f[1]), int32(f[2])}
		if err := binary.Write(bw, binary.LittleEndian, idx); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func naNOrInf(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}
