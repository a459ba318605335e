package semantic

import "math"

// Normalize returns a unit-length copy of v.
// Zero vectors are returned as zero vectors of the same length.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sum)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// Cosine returns the cosine of the angle between a and b.
// It is 0 for empty or mismatched vectors and when either norm is 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity maps cosine into [0,1] as (cos+1)/2. Vectors Cosine cannot
// compare have cosine 0 and therefore similarity 0.5.
func Similarity(a, b []float32) float64 {
	s := (Cosine(a, b) + 1) / 2
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
