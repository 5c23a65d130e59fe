// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/forcescale/backend/cpu"
	"github.com/born-ml/forcescale/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 70000}, tensor.Shape{2, 3}, tensor.Float16)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float16, raw.DType())
	assert.True(t, math.IsInf(raw.At(5), 1), "70000 overflows half precision")
	assert.False(t, raw.AllFinite())
}

func TestParseDataType(t *testing.T) {
	dt, ok := tensor.ParseDataType("fp32")
	require.True(t, ok)
	assert.Equal(t, tensor.Float32, dt)

	_, ok = tensor.ParseDataType("int8")
	assert.False(t, ok)
}
