package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-retinaface/detector"
	"github.com/nvr-ai/go-retinaface/images"
	"github.com/nvr-ai/go-retinaface/models/retinaface"
)

func main() {
	var (
		deviceID   int
		modelPath  string
		ortLibPath string
		useCoreML  bool
	)
	flag.IntVar(&deviceID, "device", 0, "Video capture device ID")
	flag.StringVar(&modelPath, "model", "retinaface.onnx", "Path to the RetinaFace ONNX model file")
	flag.StringVar(&ortLibPath, "ort-lib", "", "Path to the ONNX Runtime shared library (empty = platform default)")
	flag.BoolVar(&useCoreML, "coreml", false, "Enable the CoreML execution provider")
	flag.Parse()

	cfg := retinaface.DefaultConfig()
	det, err := detector.NewWithSession(detector.DefaultSessionConfig(modelPath, ortLibPath, useCoreML), cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer det.Close()

	// open webcam
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Face Detect")
	defer window.Close()

	// prepare image matrix
	img := gocv.NewMat()
	defer img.Close()

	// colors for boxes and landmarks
	blue := color.RGBA{0, 0, 255, 0}
	green := color.RGBA{0, 255, 0, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	ctx := context.Background()

	fmt.Printf("start reading camera device: %v\n", deviceID)
	for {
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device %v\n", deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		// Update FPS calculation
		frameCount++
		currentTime := time.Now()
		elapsed := currentTime.Sub(lastTime).Seconds()

		// Calculate FPS every second
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = currentTime
		}

		frame, err := img.ToImage()
		if err != nil {
			fmt.Printf("cannot convert frame: %v\n", err)
			continue
		}

		input, err := images.ResizeForDetection(frame, cfg.InputWidth, cfg.InputHeight)
		if err != nil {
			fmt.Printf("cannot prepare frame: %v\n", err)
			continue
		}

		faces, err := det.Detect(ctx, input.Pixels, input.Scale)
		if err != nil {
			fmt.Printf("detection failed: %v\n", err)
			continue
		}

		fmt.Printf("found %d faces | FPS: %.2f\n", len(faces), fps)

		// draw a rectangle and landmarks for each face on the original image
		for _, f := range faces {
			r := image.Rect(int(f.Box.X1), int(f.Box.Y1), int(f.Box.X2), int(f.Box.Y2))
			gocv.Rectangle(&img, r, blue, 3)
			for _, p := range f.Landmarks {
				gocv.Circle(&img, image.Pt(int(p.X), int(p.Y)), 2, green, -1)
			}
		}

		// show the image in the window, and wait 1 millisecond
		window.IMShow(img)
		window.WaitKey(1)
	}
}
