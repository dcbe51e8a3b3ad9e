package hier

import (
	"fmt"
	"strings"
)

// MaxDim is the largest spatial dimension supported by the index space types
const MaxDim = 3

// Dimension is the number of spatial dimensions of an index space
type Dimension uint8

const (
	D1 Dimension = iota + 1
	D2
	D3
)

// Valid reports whether the dimension is one of D1, D2 or D3
func (d Dimension) Valid() bool {
	return d >= D1 && d <= MaxDim
}

// IntVector is a point or extent in integer index space. Components at or
// beyond the owning Dimension are ignored.
type IntVector [MaxDim]int

// Uniform returns an IntVector with every component set to v
func Uniform(v int) IntVector {
	return IntVector{v, v, v}
}

// Zero is the IntVector with all components zero
var Zero = IntVector{}

// One is the IntVector with all components one
var One = Uniform(1)

func (v IntVector) Add(o IntVector) IntVector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

func (v IntVector) Sub(o IntVector) IntVector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Mul multiplies componentwise
func (v IntVector) Mul(o IntVector) IntVector {
	for i := range v {
		v[i] *= o[i]
	}
	return v
}

// Max returns the componentwise maximum
func (v IntVector) Max(o IntVector) IntVector {
	for i := range v {
		if o[i] > v[i] {
			v[i] = o[i]
		}
	}
	return v
}

// AllGE reports whether v[d] >= o[d] for d < dim
func (v IntVector) AllGE(o IntVector, dim Dimension) bool {
	for d := 0; d < int(dim); d++ {
		if v[d] < o[d] {
			return false
		}
	}
	return true
}

// IsZero reports whether the first dim components are zero
func (v IntVector) IsZero(dim Dimension) bool {
	for d := 0; d < int(dim); d++ {
		if v[d] != 0 {
			return false
		}
	}
	return true
}

// Format renders the first dim components as "(a,b,c)"
func (v IntVector) Format(dim Dimension) string {
	parts := make([]string, int(dim))
	for d := range parts {
		parts[d] = fmt.Sprintf("%d", v[d])
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// floorDiv divides rounding toward negative infinity, as coarsening requires
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
