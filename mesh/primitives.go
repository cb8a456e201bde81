package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Reference shapes used by tests and examples.

// Cube returns a closed axis-aligned cube of the given edge length
// centered at the origin, triangulated into 12 outward-facing faces.
func Cube(size float64) *Mesh {
	h := size / 2
	positions := []r3.Vec{
		{X: -h, Y: -h, Z: -h},
		{X: h, Y: -h, Z: -h},
		{X: h, Y: h, Z: -h},
		{X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h},
		{X: h, Y: -h, Z: h},
		{X: h, Y: h, Z: h},
		{X: -h, Y: h, Z: h},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{3, 7, 6}, {3, 6, 2}, // back
		{1, 2, 6}, {1, 6, 5}, // right
		{0, 4, 7}, {0, 7, 3}, // left
	}
	m, err := FromBuffers(positions, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// Icosphere returns a closed sphere of the given radius obtained by
// subdividing an icosahedron subdivisions times and projecting onto the
// sphere. Zero subdivisions yield the icosahedron itself.
func Icosphere(radius float64, subdivisions int) *Mesh {
	t := (1 + math.Sqrt(5)) / 2 // golden ratio
	positions := []r3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[Edge]int)
		next := make([][3]int, 0, 4*len(faces))
		midOf := func(a, b int) int {
			e := MakeEdge(a, b)
			if v, ok := midpoints[e]; ok {
				return v
			}
			positions = append(positions, r3.Scale(0.5, r3.Add(positions[a], positions[b])))
			midpoints[e] = len(positions) - 1
			return len(positions) - 1
		}
		for _, f := range faces {
			ab := midOf(f[0], f[1])
			bc := midOf(f[1], f[2])
			ca := midOf(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}
	for i, p := range positions {
		positions[i] = r3.Scale(radius, r3.Unit(p))
	}
	m, err := FromBuffers(positions, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// Grid returns an open flat n-by-n quad grid of the given side length
// in the z=0 plane, triangulated with upward-facing faces. Its outer
// edges form a border.
func Grid(n int, size float64) *Mesh {
	if n < 1 {
		panic("mesh: Grid needs at least one quad per side")
	}
	step := size / float64(n)
	half := size / 2
	at := func(i, j int) int { return j*(n+1) + i }
	positions := make([]r3.Vec, 0, (n+1)*(n+1))
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			positions = append(positions, r3.Vec{
				X: -half + float64(i)*step,
				Y: -half + float64(j)*step,
			})
		}
	}
	faces := make([][3]int, 0, 2*n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v00, v10 := at(i, j), at(i+1, j)
			v01, v11 := at(i, j+1), at(i+1, j+1)
			faces = append(faces, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
		}
	}
	m, err := FromBuffers(positions, faces)
	if err != nil {
		panic(err)
	}
	return m
}
