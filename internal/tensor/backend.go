package tensor

// Backend defines the interface that compute backends must implement.
// Backends handle the actual arithmetic; autodiff decorates a Backend to
// record differentiable operations.
//
// Binary elementwise ops accept equal shapes or a single-element operand
// (see BroadcastScalar) and panic on anything else, like slice indexing.
// Results carry the precision of the non-broadcast operand.
type Backend interface {
	// Name returns a human-readable backend name.
	Name() string

	// Element-wise binary operations
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise unary operations
	Neg(x *RawTensor) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor
	AddScalar(x *RawTensor, s float64) *RawTensor
	Pow(x *RawTensor, p float64) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor

	// Reductions
	Sum(x *RawTensor) *RawTensor        // all elements → shape ()
	SumLastDim(x *RawTensor) *RawTensor // (N, K) → (N)

	// Broadcasting
	BroadcastTo(x *RawTensor, shape Shape) *RawTensor // single element → shape
	RepeatLastDim(x *RawTensor, k int) *RawTensor     // (N) → (N, K)

	// Indexing
	IndexRows(x *RawTensor, idx []int) *RawTensor                // (N, K) → (len(idx), K)
	ScatterAddRows(src *RawTensor, idx []int, n int) *RawTensor // (M, K) → (n, K)

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor // (N, K) @ (K, M) → (N, M)
	Transpose(x *RawTensor) *RawTensor // (N, M) → (M, N)
}
