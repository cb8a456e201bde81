// Command mesh-optimizer remeshes a triangulated surface to a
// curvature-adapted isotropic triangulation, validating the result
// against the input with a sampled Hausdorff distance.
//
// Usage:
//
//	mesh-optimizer [flags] input.{obj,off,ply} output.{obj,off,ply}
//
// Exit code 0 means the distance tolerance was met, 2 means all
// attempts fell short (the best-effort mesh is still written), 1 any
// other failure.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/3DOM-FBK/mesh-optimizer/internal/config"
	"github.com/3DOM-FBK/mesh-optimizer/internal/logger"
	"github.com/3DOM-FBK/mesh-optimizer/meshio"
	"github.com/3DOM-FBK/mesh-optimizer/remesh"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		tolerance  = flag.Float64("tolerance", 0.001, "sizing-field approximation tolerance")
		edgeMin    = flag.Float64("edge-min", 0, "minimum edge length (default 0.1% of bounding box diagonal)")
		edgeMax    = flag.Float64("edge-max", 0, "maximum edge length (default 5% of bounding box diagonal)")
		distTol    = flag.Float64("dist-tolerance", 0, "acceptable surface distance (default half the target edge length)")
		iterations = flag.Int("iterations", 5, "remeshing iterations per attempt")
		attempts   = flag.Int("attempts", 3, "maximum remeshing attempts")
		samples    = flag.Float64("samples", 0, "distance-check samples per unit area (default 1000)")
		noProject  = flag.Bool("no-projection", false, "skip re-projection onto the input surface")
		precision  = flag.Int("precision", 17, "significant digits in text output")
		binaryPLY  = flag.Bool("binary-ply", false, "write binary PLY output")
		preview    = flag.String("preview", "", "render a PNG preview of the result to this path")
		hist       = flag.String("hist", "", "write an edge-length histogram PNG to this path")
		logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logFile    = flag.String("log-file", "", "also log to this file, with rotation")
	)
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] input output\n", os.Args[0])
		flag.PrintDefaults()
		return 1
	}
	input, output := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	// Flags given on the command line override the file.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["tolerance"] {
		cfg.Remesh.Tolerance = *tolerance
	}
	if set["edge-min"] {
		cfg.Remesh.EdgeMin = *edgeMin
	}
	if set["edge-max"] {
		cfg.Remesh.EdgeMax = *edgeMax
	}
	if set["dist-tolerance"] {
		cfg.Remesh.DistTolerance = *distTol
	}
	if set["iterations"] {
		cfg.Remesh.Iterations = *iterations
	}
	if set["attempts"] {
		cfg.Remesh.Attempts = *attempts
	}
	if set["samples"] {
		cfg.Remesh.SamplesPerArea = *samples
	}
	if set["no-projection"] {
		cfg.Remesh.NoProjection = *noProject
	}
	if set["precision"] {
		cfg.Output.Precision = *precision
	}
	if set["binary-ply"] {
		cfg.Output.BinaryPLY = *binaryPLY
	}
	if set["log-level"] {
		cfg.Logging.Level = *logLevel
	}
	if set["log-file"] {
		cfg.Logging.LogFile = *logFile
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	m, err := meshio.Read(input)
	if err != nil {
		log.Error("reading input", zap.Error(err))
		return 1
	}
	log.Info("input loaded",
		zap.String("path", input),
		zap.Int("vertices", m.NumVertices()),
		zap.Int("faces", m.NumFaces()),
		zap.Int("border_edges", len(m.BorderEdges())),
	)

	// Unset edge bounds scale with the model.
	diag := m.BoundingBox().Diagonal()
	if cfg.Remesh.EdgeMin == 0 {
		cfg.Remesh.EdgeMin = 0.001 * diag
	}
	if cfg.Remesh.EdgeMax == 0 {
		cfg.Remesh.EdgeMax = 0.05 * diag
	}

	ctrl := remesh.Controller{
		MaxAttempts:   cfg.Remesh.Attempts,
		Iterations:    cfg.Remesh.Iterations,
		NoProjection:  cfg.Remesh.NoProjection,
		Tolerance:     cfg.Remesh.Tolerance,
		EdgeMin:       cfg.Remesh.EdgeMin,
		EdgeMax:       cfg.Remesh.EdgeMax,
		DistTolerance: cfg.Remesh.DistTolerance,
		Validator: remesh.Validator{
			SamplesPerArea: cfg.Remesh.SamplesPerArea,
		},
		Log: log,
	}
	result, err := ctrl.Remesh(m)
	code := 0
	switch {
	case errors.Is(err, remesh.ErrToleranceNotMet):
		log.Warn("distance tolerance not met, writing best effort",
			zap.Float64("hausdorff", result.Report.Distance),
			zap.Int("attempts", result.Attempts),
		)
		code = 2
	case err != nil:
		log.Error("remeshing", zap.Error(err))
		return 1
	default:
		log.Info("remeshing done",
			zap.Float64("hausdorff", result.Report.Distance),
			zap.Int("attempts", result.Attempts),
			zap.Int("vertices", result.Mesh.NumVertices()),
			zap.Int("faces", result.Mesh.NumFaces()),
			zap.Int("border_edges", len(result.Mesh.BorderEdges())),
		)
	}

	opts := meshio.WriteOptions{
		Precision: cfg.Output.Precision,
		BinaryPLY: cfg.Output.BinaryPLY,
	}
	if err := meshio.Write(output, result.Mesh, opts); err != nil {
		log.Error("writing output", zap.Error(err))
		return 1
	}
	log.Info("output written", zap.String("path", output))

	if *preview != "" {
		if err := writePreview(*preview, result.Mesh); err != nil {
			log.Error("rendering preview", zap.Error(err))
			return 1
		}
		log.Info("preview written", zap.String("path", *preview))
	}
	if *hist != "" {
		if err := writeEdgeHistogram(*hist, m, result.Mesh, result.TargetLength); err != nil {
			log.Error("writing histogram", zap.Error(err))
			return 1
		}
		log.Info("histogram written", zap.String("path", *hist))
	}
	return code
}
