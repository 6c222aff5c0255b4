package pixelate

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Transformer converts an uploaded image into its canonical pixelated
// form. Implementations are pure from the caller's viewpoint: same input
// bytes, same output bytes.
type Transformer interface {
	Pixelate(payload []byte) ([]byte, error)
}

// ImagingTransformer pixelates by downscaling to a coarse grid with
// nearest-neighbor sampling and scaling back up, so each grid cell
// becomes one solid block.
type ImagingTransformer struct {
	blocks int // cells across the longer edge
}

const defaultBlocks = 32

func NewImagingTransformer(blocks int) *ImagingTransformer {
	if blocks <= 0 {
		blocks = defaultBlocks
	}
	return &ImagingTransformer{blocks: blocks}
}

func (t *ImagingTransformer) Pixelate(payload []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image")
	}

	blocks := t.blocks
	if blocks > width {
		blocks = width
	}

	small := imaging.Resize(img, blocks, 0, imaging.NearestNeighbor)
	pixelated := imaging.Resize(small, width, height, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, pixelated, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
