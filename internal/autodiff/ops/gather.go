package ops

import "github.com/born-ml/forcescale/internal/tensor"

// IndexRowsOp gathers rows: output[i] = x[idx[i]].
//
// Backward pass scatters row gradients back, accumulating when a row was
// gathered more than once (every atom appears in many pairs).
type IndexRowsOp struct {
	base
	idx []int
}

// NewIndexRowsOp creates a new IndexRowsOp.
func NewIndexRowsOp(x, output *tensor.RawTensor, idx []int) *IndexRowsOp {
	return &IndexRowsOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, idx: idx}
}

// Backward computes grad_x via scatter-add.
func (op *IndexRowsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := op.inputs[0].Shape()[0]
	return []*tensor.RawTensor{backend.ScatterAddRows(outputGrad, op.idx, n)}
}
