package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/nvr-ai/go-retinaface/detector"
	"github.com/nvr-ai/go-retinaface/images"
	"github.com/nvr-ai/go-retinaface/models/retinaface"
	"github.com/nvr-ai/go-retinaface/util"
)

func main() {
	var (
		modelPath     string
		framesDir     string
		probThreshold float64
		nmsThreshold  float64
		ortLibPath    string
		useCoreML     bool
	)
	flag.StringVar(&modelPath, "model", "retinaface.onnx", "Path to the RetinaFace ONNX model file")
	flag.StringVar(&framesDir, "dir", "frames", "Directory of frame-N.jpg/png images to process")
	flag.Float64Var(&probThreshold, "prob", 0.75, "Face probability threshold")
	flag.Float64Var(&nmsThreshold, "nms", 0.5, "NMS overlap threshold")
	flag.StringVar(&ortLibPath, "ort-lib", "", "Path to the ONNX Runtime shared library (empty = platform default)")
	flag.BoolVar(&useCoreML, "coreml", false, "Enable the CoreML execution provider")
	flag.Parse()

	cfg := retinaface.DefaultConfig()
	cfg.ProbThreshold = float32(probThreshold)
	cfg.NMSThreshold = float32(nmsThreshold)

	det, err := detector.NewWithSession(detector.DefaultSessionConfig(modelPath, ortLibPath, useCoreML), cfg)
	if err != nil {
		log.Fatalf("failed to create detector: %v", err)
	}
	defer det.Close()

	frames, err := util.LoadDirectoryFrames(framesDir)
	if err != nil {
		log.Fatalf("failed to load frames from %s: %v", framesDir, err)
	}

	ctx := context.Background()
	for _, frame := range frames {
		input, err := images.ResizeForDetection(frame.Image, cfg.InputWidth, cfg.InputHeight)
		if err != nil {
			log.Fatalf("failed to prepare %s: %v", frame.Path, err)
		}

		faces, err := det.Detect(ctx, input.Pixels, input.Scale)
		if err != nil {
			log.Fatalf("detection failed on %s: %v", frame.Path, err)
		}

		fmt.Printf("%s: %d face(s)\n", frame.Path, len(faces))
		for _, f := range faces {
			fmt.Printf("  score=%.3f box=(%.1f,%.1f)-(%.1f,%.1f)\n",
				f.Score, f.Box.X1, f.Box.Y1, f.Box.X2, f.Box.Y2)
			for k, p := range f.Landmarks {
				fmt.Printf("    landmark %d: (%.1f, %.1f)\n", k, p.X, p.Y)
			}
		}
	}
}
