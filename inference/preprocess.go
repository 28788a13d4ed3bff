package inference

import "github.com/pkg/errors"

// PrepareInput converts an RGBA pixel buffer into the NCHW float32 layout
// the network consumes: three contiguous planes in R, G, B order, values
// kept as raw 0-255 floats. The alpha channel is dropped.
//
// Arguments:
//   - pixels: RGBA bytes, width*height*4 long.
//   - width: Buffer width in pixels.
//   - height: Buffer height in pixels.
//   - dst: Destination slice, 3*width*height floats.
//
// Returns:
//   - error: An error if either buffer length does not match the
//     dimensions.
func PrepareInput(pixels []byte, width, height int, dst []float32) error {
	plane := width * height
	if len(pixels) != plane*4 {
		return errors.Errorf("pixel buffer holds %d bytes, %dx%d RGBA requires %d",
			len(pixels), width, height, plane*4)
	}
	if len(dst) != plane*3 {
		return errors.Errorf("destination tensor holds %d floats, needs %d "+
			"(make sure it's the right shape!)", len(dst), plane*3)
	}

	red := dst[0:plane]
	green := dst[plane : plane*2]
	blue := dst[plane*2 : plane*3]

	for i := 0; i < plane; i++ {
		red[i] = float32(pixels[i*4])
		green[i] = float32(pixels[i*4+1])
		blue[i] = float32(pixels[i*4+2])
	}
	return nil
}
