// Package util - Frame loading helpers for the CLI tools.
package util

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FrameFile is one decoded frame from a directory of extracted frames.
type FrameFile struct {
	// Path is the path to the image file.
	Path string
	// Image is the decoded image.
	Image image.Image
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadDirectoryFrames reads and decodes all frame images from a directory.
//
// File names are expected to follow the frame-N.<ext> convention produced
// by frame extraction; the returned slice is sorted by frame number.
//
// Arguments:
//   - dir: Directory path containing frame images.
//
// Returns:
//   - []FrameFile: Decoded frames in frame order.
//   - error: Error if reading or decoding fails.
func LoadDirectoryFrames(dir string) ([]FrameFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var frames []FrameFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch ext {
		case ".jpg", ".jpeg", ".png":
			imgPath := filepath.Join(dir, file.Name())
			f, openErr := os.Open(imgPath)
			if openErr != nil {
				return nil, openErr
			}
			img, _, decodeErr := image.Decode(f)
			f.Close()
			if decodeErr != nil {
				return nil, decodeErr
			}
			frame, err := strconv.Atoi(strings.TrimSuffix(strings.ReplaceAll(file.Name(), "frame-", ""), ext))
			if err != nil {
				return nil, err
			}
			frames = append(frames, FrameFile{
				Path:  imgPath,
				Image: img,
				Frame: frame,
			})
		}
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Frame < frames[j].Frame
	})

	return frames, nil
}
