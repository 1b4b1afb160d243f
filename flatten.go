// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tfutils

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/pkg/core/graph"
)

// Flatten collapses the axes startDim through endDim (inclusive, matching
// torch.flatten semantics) of x into a single axis whose size is the product
// of the collapsed sizes. Negative indices count from the last axis. If the
// resolved startDim equals endDim there is nothing to collapse and x is
// returned unchanged.
//
// The result is a reshape: axes before startDim and after endDim are
// unchanged. When the collapsed range includes dynamic (symbolic) axes, the
// output shape is assembled at execution time with graph.DynamicReshape.
func Flatten(x *Node, startDim, endDim int) *Node {
	rank := x.Rank()
	if startDim < 0 {
		startDim += rank
	}
	if endDim < 0 {
		endDim += rank
	}
	if startDim < 0 || startDim >= rank || endDim < 0 || endDim >= rank {
		exceptions.Panicf("tfutils.Flatten: dimension range [%d, %d] out of bounds for input rank %d", startDim, endDim, rank)
	}
	if startDim > endDim {
		exceptions.Panicf("tfutils.Flatten: startDim (%d) must not come after endDim (%d)", startDim, endDim)
	}
	if startDim == endDim {
		return x
	}

	if !x.Shape().HasSymbolicDim() {
		newDims := make([]int, 0, rank-(endDim-startDim))
		newDims = append(newDims, x.Shape().Dimensions[:startDim]...)
		flattened := 1
		for _, size := range x.Shape().Dimensions[startDim : endDim+1] {
			flattened *= size
		}
		newDims = append(newDims, flattened)
		newDims = append(newDims, x.Shape().Dimensions[endDim+1:]...)
		return Reshape(x, newDims...)
	}

	// Dynamic axes: build the output shape as a runtime tensor.
	g := x.Graph()
	dims := ShapeList(x)
	sizeNodes := make([]*Node, 0, rank-(endDim-startDim))
	for _, d := range dims[:startDim] {
		sizeNodes = append(sizeNodes, d.SizeNode(g))
	}
	flattened := dims[startDim].SizeNode(g)
	for _, d := range dims[startDim+1 : endDim+1] {
		flattened = Mul(flattened, d.SizeNode(g))
	}
	sizeNodes = append(sizeNodes, flattened)
	for _, d := range dims[endDim+1:] {
		sizeNodes = append(sizeNodes, d.SizeNode(g))
	}
	return DynamicReshape(x, Stack(sizeNodes, 0))
}
