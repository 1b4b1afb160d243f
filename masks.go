// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tfutils

import (
	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/pkg/core/graph"
)

// nodeFromValue returns value as a graph node, converting non-node values to
// constants in g. g may be nil when value is already a *Node.
func nodeFromValue(g *Graph, value any) *Node {
	if node, ok := value.(*Node); ok {
		return node
	}
	if g == nil {
		exceptions.Panicf("tfutils: a *graph.Graph is required to convert %T to a constant node", value)
	}
	return Const(g, value)
}

// InvertAttentionMask converts an attention mask where 1 means "attend" and 0
// means "ignore" into an additive bias: 0 where attention is allowed and the
// dtype's most negative finite value where it is not. Added to raw attention
// scores before softmax, disallowed positions end up with ~0 probability.
//
// encoderAttentionMask is either a *graph.Node or any value convertible to a
// constant in g (g may be nil when a node is given), and must have a float
// dtype. Rank-2 masks (batch, seq) are expanded to (batch, 1, 1, seq) and
// rank-3 masks (batch, seqQ, seqK) to (batch, 1, seqQ, seqK), so the result
// broadcasts against (batch, heads, seqQ, seqK) attention scores. Any other
// rank panics.
func InvertAttentionMask(g *Graph, encoderAttentionMask any) *Node {
	mask := nodeFromValue(g, encoderAttentionMask)
	if !mask.DType().IsFloat() {
		exceptions.Panicf("tfutils.InvertAttentionMask: mask dtype must be float to build an additive bias, got %s", mask.DType())
	}
	var extended *Node
	switch mask.Rank() {
	case 2:
		extended = InsertAxes(mask, 1, 1)
	case 3:
		extended = InsertAxes(mask, 1)
	default:
		exceptions.Panicf("tfutils.InvertAttentionMask: only rank-2 (batch, seq) and rank-3 (batch, seqQ, seqK) masks are supported, got rank %d", mask.Rank())
	}
	return MulScalar(OneMinus(extended), MinFinite(mask.DType()))
}

// ExtendedAttentionMask expands an attention mask (1 = attend, 0 = ignore) to
// rank 4 and inverts it into an additive bias like InvertAttentionMask,
// optionally combining a rank-2 padding mask with a causal (lower-triangular)
// pattern first, as decoder-side model ports need.
//
// attentionMask is either a *graph.Node or any value convertible to a
// constant in g, with a float dtype and rank 2 or 3. causal is only supported
// for rank-2 masks with a statically known sequence length.
func ExtendedAttentionMask(g *Graph, attentionMask any, causal bool) *Node {
	mask := nodeFromValue(g, attentionMask)
	if !mask.DType().IsFloat() {
		exceptions.Panicf("tfutils.ExtendedAttentionMask: mask dtype must be float to build an additive bias, got %s", mask.DType())
	}
	var extended *Node
	switch mask.Rank() {
	case 2:
		extended = InsertAxes(mask, 1, 1) // (batch, 1, 1, seq)
		if causal {
			seqLen := mask.Shape().Dimensions[1]
			if seqLen < 0 {
				exceptions.Panicf("tfutils.ExtendedAttentionMask: causal masking requires a statically known sequence length, got shape %s", mask.Shape())
			}
			causalPattern := ConvertDType(LowerTriangular(mask.Graph(), seqLen), mask.DType())
			causalPattern = Reshape(causalPattern, 1, 1, seqLen, seqLen)
			// (batch, 1, 1, seq) * (1, 1, seq, seq) -> (batch, 1, seq, seq)
			extended = Mul(extended, causalPattern)
		}
	case 3:
		if causal {
			exceptions.Panicf("tfutils.ExtendedAttentionMask: causal masking is only supported for rank-2 masks, got rank 3")
		}
		extended = InsertAxes(mask, 1) // (batch, 1, seqQ, seqK)
	default:
		exceptions.Panicf("tfutils.ExtendedAttentionMask: only rank-2 (batch, seq) and rank-3 (batch, seqQ, seqK) masks are supported, got rank %d", mask.Rank())
	}
	return MulScalar(OneMinus(extended), MinFinite(mask.DType()))
}
