package ops

import "github.com/born-ml/forcescale/internal/tensor"

// reduceBroadcast reduces a gradient to match the target shape.
// Forward ops only broadcast single-element operands, so the reduction is
// either a no-op or a full sum.
//
//	Forward:  a[4,3] * s[] -> c[4,3]
//	Backward: grad_c[4,3] -> grad_s[] (sum of all elements)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	sum := backend.Sum(grad)
	if sum.Shape().Equal(targetShape) {
		return sum
	}
	// Target is Shape{1} (or another single-element shape) rather than ().
	return backend.BroadcastTo(sum, targetShape)
}
