package sparse

import "math"

// Vector is a sparse term-weight vector. Keys absent from the map have
// weight 0, so lookups never need an existence check. Operations return new
// vectors and never mutate their receivers.
type Vector map[string]float64

// Dot returns the dot product of v and other, iterating the smaller of the
// two operands.
func (v Vector) Dot(other Vector) float64 {
	if len(v) > len(other) {
		v, other = other, v
	}
	var sum float64
	for k, w := range v {
		sum += w * other[k]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity between v and other. If either
// vector has zero norm the result is 0, never NaN.
func (v Vector) Cosine(other Vector) float64 {
	a := v.Norm()
	b := other.Norm()
	if a == 0 || b == 0 {
		return 0
	}
	return v.Dot(other) / (a * b)
}

// Add returns the key-wise sum of v and other.
func (v Vector) Add(other Vector) Vector {
	res := make(Vector, len(v)+len(other))
	for k, w := range v {
		res[k] = w
	}
	for k, w := range other {
		res[k] += w
	}
	return res
}

// Sub returns the key-wise difference v minus other.
func (v Vector) Sub(other Vector) Vector {
	res := make(Vector, len(v)+len(other))
	for k, w := range v {
		res[k] = w
	}
	for k, w := range other {
		res[k] -= w
	}
	return res
}

// Normalize returns v scaled to unit norm. A zero vector is returned as an
// unchanged copy.
func (v Vector) Normalize() Vector {
	res := make(Vector, len(v))
	n := v.Norm()
	if n == 0 {
		for k, w := range v {
			res[k] = w
		}
		return res
	}
	for k, w := range v {
		res[k] = w / n
	}
	return res
}
