package main

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
)

const (
	previewWidth  = 768
	previewHeight = 432
)

// writePreview renders m with a Phong shader from an isometric
// viewpoint and saves the frame as a PNG.
func writePreview(path string, m *mesh.Mesh) error {
	const (
		scale = 2  // supersampling for antialiasing
		fovy  = 30 // vertical field of view in degrees
		near  = 1
		far   = 10
	)
	var (
		eye    = fauxgl.V(2.4, 2.4, 2.4)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)

	fm := fauxglMesh(m)
	// fit mesh in a bi-unit cube centered at the origin
	fm.BiUnitCube()

	context := fauxgl.NewContext(previewWidth*scale, previewHeight*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(previewWidth) / float64(previewHeight)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(fm)

	// downsample for antialiasing
	image := context.Image()
	image = resize.Resize(previewWidth, previewHeight, image, resize.Bilinear)
	return fauxgl.SavePNG(path, image)
}

func fauxglMesh(m *mesh.Mesh) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, 0, m.NumFaces())
	for _, t := range m.Triangles() {
		tris = append(tris, fauxgl.NewTriangleForPoints(
			fauxgl.Vector{X: t[0].X, Y: t[0].Y, Z: t[0].Z},
			fauxgl.Vector{X: t[1].X, Y: t[1].Y, Z: t[1].Z},
			fauxgl.Vector{X: t[2].X, Y: t[2].Y, Z: t[2].Z},
		))
	}
	return fauxgl.NewTriangleMesh(tris)
}
