// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tfutils

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/support/xslices"
)

// DefaultLayerNormEpsilon is the variance epsilon used by PyTorch's
// nn.functional.layer_norm, which FunctionalLayerNorm duplicates.
const DefaultLayerNormEpsilon = 1e-5

// FunctionalLayerNorm normalizes x along axis using its mean and variance,
// then rescales with weight and shifts with bias — a functional equivalent of
// PyTorch's nn.functional.layer_norm for porting models with pre-loaded
// per-channel parameters.
//
// weight and bias must be rank-1 vectors whose size matches the normalized
// axis; anything else panics, as generalized (multi-axis, higher-rank
// parameter) normalization is not supported. axis may be negative, counting
// from the last axis. When axis is not the last one, weight and bias are
// reshaped with singleton dimensions everywhere except axis, so broadcasting
// lines the parameters up with the right dimension.
//
// epsilon is added inside the variance square root for numerical stability;
// pass DefaultLayerNormEpsilon to match PyTorch's default.
//
// See also nn.LayerNorm for the native (and on some backends fused) layer
// normalization over the last axes.
func FunctionalLayerNorm(x, weight, bias *Node, epsilon float64, axis int) *Node {
	if weight.Rank() != 1 || bias.Rank() != 1 {
		exceptions.Panicf("tfutils.FunctionalLayerNorm: only rank-1 weight and bias are supported, got weight rank %d and bias rank %d",
			weight.Rank(), bias.Rank())
	}
	rank := x.Rank()
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += rank
	}
	if adjustedAxis < 0 || adjustedAxis >= rank {
		exceptions.Panicf("tfutils.FunctionalLayerNorm: invalid axis %d for input rank %d", axis, rank)
	}

	mean := ReduceAndKeep(x, ReduceMean, adjustedAxis)
	xCentered := Sub(x, mean)
	variance := ReduceAndKeep(Square(xCentered), ReduceMean, adjustedAxis)

	if adjustedAxis != rank-1 {
		// Rank-match the per-channel parameters so they broadcast against axis.
		broadcastDims := xslices.SliceWithValue(rank, 1)
		broadcastDims[adjustedAxis] = weight.Shape().Dimensions[0]
		weight = Reshape(weight, broadcastDims...)
		bias = Reshape(bias, broadcastDims...)
	}

	normalized := Div(xCentered, Sqrt(AddScalar(variance, epsilon)))
	return Add(Mul(normalized, weight), bias)
}

// RMSNorm applies root mean square normalization over the last axis of x with
// a learned rank-1 weight, as used by Llama-family models:
// x / sqrt(mean(x²)+epsilon) * weight. Unlike layer normalization it does not
// center the activations.
func RMSNorm(x, weight *Node, epsilon float64) *Node {
	if weight.Rank() != 1 {
		exceptions.Panicf("tfutils.RMSNorm: only rank-1 weight is supported, got rank %d", weight.Rank())
	}
	meanSquare := ReduceAndKeep(Square(x), ReduceMean, -1)
	normalized := Div(x, Sqrt(AddScalar(meanSquare, epsilon)))

	broadcastDims := xslices.SliceWithValue(x.Rank(), 1)
	broadcastDims[x.Rank()-1] = weight.Shape().Dimensions[0]
	return Mul(normalized, Reshape(weight, broadcastDims...))
}
