package keyshape

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// holeRatio is the size of the head hole relative to the head.
const holeRatio = 0.5

// VisualPart is a drawable primitive in the local frame of a key.
type VisualPart struct {
	Kind    PartKind
	Center  r2.Vec
	Width   float64
	Height  float64
	Ellipse bool
	// Cutout marks the head hole, painted in the background color.
	Cutout bool
}

// Visual returns the drawing layout of a key in paint order. Unlike Build,
// notch depths are not clamped and the head keeps its full size.
func Visual(box BoundingBox, params Params) []VisualPart {
	headX := -box.Width * headOffsetRatio
	shaftW := box.Width * shaftWidthRatio
	shaftH := params.ShaftHeight
	shaftX := headX + params.HeadWidth*headJoinRatio + shaftW/2

	parts := make([]VisualPart, 0, 3+len(params.Notches))
	parts = append(parts,
		VisualPart{Kind: PartHead, Center: r2.Vec{X: headX}, Width: params.HeadWidth, Height: params.HeadHeight, Ellipse: true},
		VisualPart{Kind: PartHead, Center: r2.Vec{X: headX}, Width: params.HeadWidth * holeRatio, Height: params.HeadHeight * holeRatio, Ellipse: true, Cutout: true},
		VisualPart{Kind: PartShaft, Center: r2.Vec{X: shaftX}, Width: shaftW, Height: shaftH},
	)

	regionStart, spacing := notchLayout(shaftX, shaftW, len(params.Notches))
	for i, depth := range params.Notches {
		parts = append(parts, VisualPart{
			Kind:   PartNotch,
			Center: r2.Vec{X: regionStart + spacing*float64(i+1), Y: shaftH/2 + depth/2},
			Width:  spacing * notchWidthRatio,
			Height: depth,
		})
	}
	return parts
}
