// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tfutils

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/dtypes/bfloat16"
	"github.com/x448/float16"
)

// MinFinite returns the most negative finite value representable by the given
// float dtype, the equivalent of TensorFlow's `dtype.min`. It panics for
// non-float dtypes.
//
// This is distinct from dtype.LowestValue(), which returns negative infinity
// for floats: additive attention biases are built as (1-mask)*min, and a
// -Inf there would turn allowed positions (mask == 1) into 0 * -Inf = NaN.
func MinFinite(dtype dtypes.DType) float64 {
	switch dtype {
	case dtypes.Float64:
		return -math.MaxFloat64
	case dtypes.Float32:
		return -math.MaxFloat32
	case dtypes.Float16:
		// Sign bit set, maximum finite exponent and mantissa: -65504.
		return float64(float16.Frombits(0xFBFF).Float32())
	case dtypes.BFloat16:
		return float64(bfloat16.FromBits(0xFF7F).Float32())
	default:
		exceptions.Panicf("tfutils.MinFinite: no finite minimum for dtype %s, only float dtypes are supported", dtype)
		panic("unreachable")
	}
}
