// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tfutils provides numeric helpers used when porting models whose
// reference implementations were written against TensorFlow or PyTorch
// semantics to GoMLX.
//
// Every function is a thin, stateless wrapper around GoMLX graph primitives:
// there is no state shared between calls, and all of them are safe for
// concurrent use. Functions that build graph nodes follow the graph package
// convention of reporting invalid arguments with panics (see
// github.com/gomlx/exceptions); they can be converted to errors with
// exceptions.TryCatch.
package tfutils

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Dim is one axis of a shape list: either a statically known size, or a graph
// node (a scalar Int32, built with graph.GetDimensionSize) that resolves the
// size at execution time.
//
// The zero value is a static dimension of size 0.
type Dim struct {
	size int
	node *graph.Node
}

// StaticDim returns a Dim with a statically known size.
func StaticDim(size int) Dim {
	return Dim{size: size}
}

// DynamicDim returns a Dim whose size is only known at execution time, given
// by the scalar node.
func DynamicDim(node *graph.Node) Dim {
	return Dim{node: node}
}

// IsStatic reports whether the dimension size is known at graph building time.
func (d Dim) IsStatic() bool { return d.node == nil }

// Static returns the statically known size. It panics if the dimension is
// dynamic — check IsStatic first.
func (d Dim) Static() int {
	if !d.IsStatic() {
		exceptions.Panicf("tfutils.Dim.Static: dimension is only known at execution time, check Dim.IsStatic before calling Static")
	}
	return d.size
}

// SizeNode returns the dimension size as a scalar Int32 node in graph g,
// materializing static sizes as constants. It allows mixed static/dynamic
// shape lists to be assembled into runtime shape tensors.
func (d Dim) SizeNode(g *graph.Graph) *graph.Node {
	if d.node != nil {
		return d.node
	}
	return graph.Const(g, int32(d.size))
}

// ShapeList returns the per-axis sizes of x, using the static size wherever
// the graph knows it and a graph.GetDimensionSize node for axes that are
// dynamic (symbolic). It mirrors TensorFlow's idiom of mixing the static
// `tensor.shape` with the runtime `tf.shape(tensor)`, so downstream code can
// consume known dimensions directly and defer the rest to execution time.
//
// GoMLX nodes always carry a rank, so unlike TensorFlow there is no
// unknown-rank case to handle: the result always has x.Rank() entries.
func ShapeList(x *graph.Node) []Dim {
	shape := x.Shape()
	dims := make([]Dim, shape.Rank())
	for axis, size := range shape.Dimensions {
		if size < 0 {
			dims[axis] = DynamicDim(graph.GetDimensionSize(x, axis))
		} else {
			dims[axis] = StaticDim(size)
		}
	}
	return dims
}

// ShapeListFromValue returns the concrete dimensions of value, which must be
// a *tensors.Tensor, anything with a shape (shapes.HasShape, including
// *graph.Node with a fully static shape) or a plain Go value convertible by
// tensors.FromAnyValue (scalars, slices, multi-dimensional slices).
//
// It fails if value cannot be converted to a tensor, or if its shape has
// dynamic dimensions — use ShapeList for those.
func ShapeListFromValue(value any) ([]int, error) {
	var shape shapes.Shape
	switch v := value.(type) {
	case *tensors.Tensor:
		shape = v.Shape()
	case shapes.HasShape:
		shape = v.Shape()
	default:
		var t *tensors.Tensor
		err := exceptions.TryCatch[error](func() { t = tensors.FromAnyValue(value) })
		if err != nil {
			return nil, errors.WithMessagef(err, "tfutils.ShapeListFromValue: cannot convert %T to a tensor", value)
		}
		shape = t.Shape()
	}
	for axis, size := range shape.Dimensions {
		if size < 0 {
			return nil, errors.Errorf("tfutils.ShapeListFromValue: axis %d of shape %s is dynamic, use ShapeList instead", axis, shape)
		}
	}
	return slices.Clone(shape.Dimensions), nil
}
