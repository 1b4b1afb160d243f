// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tfutils_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	_ "github.com/gomlx/gomlx/backends/default"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/tfutils"
	"github.com/stretchr/testify/require"
)

func TestShapeListStatic(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := graph.NewGraph(backend, "TestShapeListStatic")
	x := graph.Iota(g, shapes.Make(dtypes.Float32, 2, 3, 4, 5), 0)

	dims := tfutils.ShapeList(x)
	require.Len(t, dims, 4)
	for axis, want := range []int{2, 3, 4, 5} {
		require.True(t, dims[axis].IsStatic())
		require.Equal(t, want, dims[axis].Static())
	}
}

func TestShapeListDynamic(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := graph.NewGraph(backend, "TestShapeListDynamic")
	shape := shapes.Make(dtypes.Float32, 0, 7).WithDynamicAxis(0, "batch")
	x := graph.Parameter(g, "x", shape)

	dims := tfutils.ShapeList(x)
	require.Len(t, dims, 2)

	require.False(t, dims[0].IsStatic())
	sizeNode := dims[0].SizeNode(g)
	require.Equal(t, 0, sizeNode.Rank())
	require.Equal(t, dtypes.Int32, sizeNode.DType())
	// Static() must refuse to answer for an execution-time size.
	require.Error(t, exceptions.TryCatch[error](func() { dims[0].Static() }))

	require.True(t, dims[1].IsStatic())
	require.Equal(t, 7, dims[1].Static())
}

func TestDimSizeNodeMaterializesConstants(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := graph.NewGraph(backend, "TestDimSizeNodeMaterializesConstants")
	node := tfutils.StaticDim(12).SizeNode(g)
	require.Equal(t, 0, node.Rank())
	require.Equal(t, dtypes.Int32, node.DType())
}

func TestShapeListFromValue(t *testing.T) {
	t.Run("GoValue", func(t *testing.T) {
		dims, err := tfutils.ShapeListFromValue([][]float32{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		require.Equal(t, []int{2, 3}, dims)
	})

	t.Run("Scalar", func(t *testing.T) {
		dims, err := tfutils.ShapeListFromValue(float32(1))
		require.NoError(t, err)
		require.Empty(t, dims)
	})

	t.Run("Tensor", func(t *testing.T) {
		dims, err := tfutils.ShapeListFromValue(tensors.FromValue([]int32{1, 2, 3, 4}))
		require.NoError(t, err)
		require.Equal(t, []int{4}, dims)
	})

	t.Run("Node", func(t *testing.T) {
		backend := graphtest.BuildTestBackend()
		g := graph.NewGraph(backend, "TestShapeListFromValue")
		dims, err := tfutils.ShapeListFromValue(graph.Iota(g, shapes.Make(dtypes.Float64, 3, 5), 0))
		require.NoError(t, err)
		require.Equal(t, []int{3, 5}, dims)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := tfutils.ShapeListFromValue(struct{ X int }{X: 1})
		require.Error(t, err)
	})

	t.Run("DynamicShape", func(t *testing.T) {
		backend := graphtest.BuildTestBackend()
		g := graph.NewGraph(backend, "TestShapeListFromValueDynamic")
		shape := shapes.Make(dtypes.Float32, 0, 7).WithDynamicAxis(0, "batch")
		_, err := tfutils.ShapeListFromValue(graph.Parameter(g, "x", shape))
		require.Error(t, err)
		require.Contains(t, err.Error(), "dynamic")
	})
}
