// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tfutils

import (
	"sync"

	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/nn"
	"k8s.io/klog/v2"
)

// SoftmaxStabilityEpsilon is added to the logits by StableSoftmax. Softmax is
// shift-invariant (softmax(x) == softmax(x+c)), so the result is unchanged,
// but the shift avoids all-NaN outputs that XLA on CPU produces for uniform
// or degenerate logits (see github.com/tensorflow/tensorflow/issues/55682,
// the same backend bug the TensorFlow-side workaround targets).
const SoftmaxStabilityEpsilon = 1e-9

var stableSoftmaxNote sync.Once

// StableSoftmax computes softmax over the given axes (defaults to the last
// axis when none is given), adding SoftmaxStabilityEpsilon to the logits
// first.
//
// This is a compatibility shim for ported models: on backends that do not
// exhibit the XLA CPU issue it is equivalent to nn.Softmax, which callers
// should prefer.
func StableSoftmax(logits *graph.Node, axes ...int) *graph.Node {
	stableSoftmaxNote.Do(func() {
		klog.V(1).Infof("tfutils.StableSoftmax: shifting logits by %g to work around XLA CPU softmax NaNs", SoftmaxStabilityEpsilon)
	})
	return nn.Softmax(graph.AddScalar(logits, SoftmaxStabilityEpsilon), axes...)
}

// NamedStableSoftmax is StableSoftmax with the resulting node registered
// under the given graph alias, the closest GoMLX equivalent of TensorFlow's
// `name=` operation parameter. Ported code that names its softmax ops can
// keep those names for later introspection (graph.Graph.GetNodeByAlias).
func NamedStableSoftmax(logits *graph.Node, name string, axes ...int) *graph.Node {
	return StableSoftmax(logits, axes...).WithAlias(name)
}
