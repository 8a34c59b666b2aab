package index

import "math"

// SparseVector holds the non-zero weights of a document vector. Indices are
// strictly increasing vocabulary positions.
type SparseVector struct {
	Indices []int32
	Values  []float64
}

// NNZ returns the number of stored weights.
func (v SparseVector) NNZ() int { return len(v.Indices) }

// Norm returns the L2 norm of v.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of two sparse vectors.
func Dot(a, b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// Cosine computes cosine similarity between two sparse vectors. It is 0 when
// either vector has no weight.
func Cosine(a, b SparseVector) float64 {
	den := a.Norm() * b.Norm()
	if den == 0 {
		return 0
	}
	return Dot(a, b) / den
}

// NormalizeL2 scales v in place to unit L2 norm. Zero vectors are left as is.
func NormalizeL2(v SparseVector) SparseVector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	inv := 1.0 / n
	for i := range v.Values {
		v.Values[i] *= inv
	}
	return v
}
