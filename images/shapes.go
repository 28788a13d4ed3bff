// Package images - Geometry primitives and input preparation for detection.
package images

// Rect is a lightweight bounding box in pixel space.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner.
// Regression output can produce rects where X2 < X1 or Y2 < Y1; consumers
// that compute areas must clamp negative extents themselves.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Point is a single 2D coordinate, used for facial landmarks.
type Point struct {
	X, Y float32
}

// Width returns the horizontal extent of the rect (negative for malformed
// rects).
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rect (negative for malformed
// rects).
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// CalculateIoU computes the Intersection over Union of two rectangles.
//
// IoU is the ratio of the overlapping area of the two rects to the total
// area they cover combined:
//
//	IoU = Area of Intersection / Area of Union
//
//	- 1.0 means the rectangles are identical.
//	- 0.0 means they do not overlap at all.
//
// The intersection's top-left corner is the maximum of the two top-left
// corners and its bottom-right corner is the minimum of the two
// bottom-right corners. Non-overlapping rects yield a zero or negative
// intersection extent and return 0 immediately.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 for well-formed rects.
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	areaR := (r.X2 - r.X1) * (r.Y2 - r.Y1)
	areaO := (o.X2 - o.X1) * (o.Y2 - o.Y1)
	unionArea := areaR + areaO - interArea

	return interArea / unionArea
}
