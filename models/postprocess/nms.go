// Package postprocess - Non-Maximum Suppression for face candidates.
package postprocess

import "sort"

// DefaultIoUThreshold is the overlap threshold above which a candidate is
// suppressed by a higher-scoring pick.
const DefaultIoUThreshold float32 = 0.5

// SortByScore stable-sorts faces by descending score in place. Candidates
// with equal scores keep their aggregation order.
func SortByScore(faces []Face) {
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Score > faces[j].Score
	})
}

// PickIndices runs greedy Non-Maximum Suppression over a slice of faces
// already sorted by descending score.
//
// The scan walks the candidates in order, keeping a growing picked set. A
// candidate survives only if its IoU with every already-picked candidate
// stays at or below the threshold. The intersection extent is clamped to
// non-negative, but each candidate's own area is taken directly from its
// rect; a malformed rect with negative extent therefore carries a negative
// area and is never suppressed.
//
// Arguments:
//   - faces: Candidates sorted by descending score.
//   - iouThreshold: Maximum allowed IoU between two kept candidates.
//
// Returns:
//   - []int: Indices into faces of the picked candidates, in pick order
//     (which equals descending-score order).
func PickIndices(faces []Face, iouThreshold float32) []int {
	n := len(faces)
	if n == 0 {
		return nil
	}

	areas := make([]float32, n)
	for i, f := range faces {
		areas[i] = (f.Box.X2 - f.Box.X1) * (f.Box.Y2 - f.Box.Y1)
	}

	picked := make([]int, 0, n)
	for i := 0; i < n; i++ {
		keep := true
		for _, p := range picked {
			ix1 := max(faces[i].Box.X1, faces[p].Box.X1)
			iy1 := max(faces[i].Box.Y1, faces[p].Box.Y1)
			ix2 := min(faces[i].Box.X2, faces[p].Box.X2)
			iy2 := min(faces[i].Box.Y2, faces[p].Box.Y2)

			interW := max(float32(0), ix2-ix1)
			interH := max(float32(0), iy2-iy1)
			inter := interW * interH

			iou := inter / (areas[i] + areas[p] - inter)
			if iou > iouThreshold {
				keep = false
				break
			}
		}
		if keep {
			picked = append(picked, i)
		}
	}

	return picked
}

// ApplyGreedyNMS sorts faces by descending score and filters overlapping
// candidates with greedy Non-Maximum Suppression.
//
// Arguments:
//   - faces: Unordered face candidates. The slice is sorted in place.
//   - iouThreshold: Maximum allowed IoU between two kept candidates.
//
// Returns:
//   - []Face: The surviving candidates in descending-score order. Returns
//     nil if no candidates are provided.
func ApplyGreedyNMS(faces []Face, iouThreshold float32) []Face {
	if len(faces) == 0 {
		return nil
	}

	SortByScore(faces)

	picked := PickIndices(faces, iouThreshold)
	filtered := make([]Face, 0, len(picked))
	for _, i := range picked {
		filtered = append(filtered, faces[i])
	}
	return filtered
}
