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

// Object File Format (OFF). The edge count in the header is ignored,
// as is customary.

// ReadOFF parses an OFF document.
func ReadOFF(r io.Reader) (*mesh.Mesh, error) {
	tok := newTokenizer(r)
	first, err := tok.next()
	if err != nil {
		return nil, err
	}
	if first != "OFF" {
		// Header keyword is optional; the first token may already be
		// the vertex count.
		tok.push(first)
	}
	nv, err := tok.nextInt()
	if err != nil {
		return nil, fmt.Errorf("off: vertex count: %w", err)
	}
	nf, err := tok.nextInt()
	if err != nil {
		return nil, fmt.Errorf("off: face count: %w", err)
	}
	if _, err = tok.nextInt(); err != nil { // edge count, unused
		return nil, fmt.Errorf("off: edge count: %w", err)
	}
	positions := make([]r3.Vec, nv)
	for i := 0; i < nv; i++ {
		for j, dst := range []*float64{&positions[i].X, &positions[i].Y, &positions[i].Z} {
			v, err := tok.nextFloat()
			if err != nil {
				return nil, fmt.Errorf("off: vertex %d coordinate %d: %w", i, j, err)
			}
			*dst = v
		}
	}
	faces := make([][3]int, nf)
	for i := 0; i < nf; i++ {
		n, err := tok.nextInt()
		if err != nil {
			return nil, fmt.Errorf("off: face %d: %w", i, err)
		}
		if n != 3 {
			return nil, fmt.Errorf("off: face %d with %d vertices: %w", i, n, ErrNonTriangular)
		}
		for j := 0; j < 3; j++ {
			v, err := tok.nextInt()
			if err != nil {
				return nil, fmt.Errorf("off: face %d index %d: %w", i, j, err)
			}
			faces[i][j] = v
		}
	}
	return mesh.FromBuffers(positions, faces)
}

// WriteOFF writes m as an OFF document.
func WriteOFF(w io.Writer, m *mesh.Mesh, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	prec := opts.precision()
	verts, faces := m.Buffers()
	if err := writeAll(bw, fmt.Sprintf("OFF\n%d %d 0\n", len(verts), len(faces))); err != nil {
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

// tokenizer yields whitespace-separated tokens, skipping # comments to
// end of line.
type tokenizer struct {
	sc     *bufio.Scanner
	queued []string
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &tokenizer{sc: sc}
}

func (t *tokenizer) push(tok string) {
	t.queued = append([]string{tok}, t.queued...)
}

func (t *tokenizer) next() (string, error) {
	for len(t.queued) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		line := t.sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		t.queued = strings.Fields(line)
	}
	tok := t.queued[0]
	t.queued = t.queued[1:]
	return tok, nil
}

func (t *tokenizer) nextInt() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(tok)
}

func (t *tokenizer) nextFloat() (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(tok, 64)
}
