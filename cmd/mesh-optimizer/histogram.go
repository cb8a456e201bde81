package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/3DOM-FBK/mesh-optimizer/mesh"
)

// writeEdgeHistogram plots the edge-length distributions of the input
// and the remeshed output as a PNG, annotated with the
// curvature-derived target length.
func writeEdgeHistogram(path string, before, after *mesh.Mesh, target float64) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Edge lengths, input (red) vs output (green), target %.4g", target)
	p.X.Label.Text = "length"
	p.Y.Label.Text = "count"

	hb, err := edgeHist(before, color.NRGBA{R: 196, G: 92, B: 92, A: 128})
	if err != nil {
		return err
	}
	ha, err := edgeHist(after, color.NRGBA{R: 70, G: 137, B: 102, A: 128})
	if err != nil {
		return err
	}
	p.Add(hb, ha)

	return p.Save(16*vg.Centimeter, 10*vg.Centimeter, path)
}

func edgeHist(m *mesh.Mesh, c color.Color) (*plotter.Histogram, error) {
	edges := m.Edges()
	if len(edges) == 0 {
		return nil, fmt.Errorf("histogram: mesh has no edges")
	}
	vals := make(plotter.Values, len(edges))
	for i, e := range edges {
		vals[i] = m.EdgeLength(e)
	}
	h, err := plotter.NewHist(vals, 32)
	if err != nil {
		return nil, err
	}
	h.FillColor = c
	return h, nil
}
