package prepare

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is a group's position on the group map
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GroupPositions lays groups out in two dimensions from their term
// importances. Rows are L2 normalized so that groups with the same term mix
// land together regardless of size, then projected onto the first two
// principal components and scaled to [-1, 1].
func GroupPositions(groupTerm *mat.Dense) ([]Point, error) {
	n, d := groupTerm.Dims()
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return []Point{{}}, nil
	}

	X := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		row := X.RawRowView(i)
		copy(row, groupTerm.RawRowView(i))
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}

	// Center the data
	for j := 0; j < d; j++ {
		mean := stat.Mean(mat.Col(nil, j, X), nil)
		for i := 0; i < n; i++ {
			X.Set(i, j, X.At(i, j)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	_, comps := v.Dims()
	dims := 2
	if dims > comps {
		dims = comps
	}

	var projected mat.Dense
	projected.Mul(X, v.Slice(0, d, 0, dims))

	coords := make([][]float64, n)
	for i := 0; i < n; i++ {
		coords[i] = make([]float64, 2)
		for j := 0; j < dims; j++ {
			coords[i][j] = projected.At(i, j)
		}
	}
	coords = normalizeCoordinates(coords)

	points := make([]Point, n)
	for i, c := range coords {
		points[i] = Point{X: c[0], Y: c[1]}
	}
	return points, nil
}

// normalizeCoordinates scales coordinates to [-1, 1] range
func normalizeCoordinates(coords [][]float64) [][]float64 {
	if len(coords) == 0 {
		return coords
	}

	dims := len(coords[0])
	mins := make([]float64, dims)
	maxs := make([]float64, dims)

	for j := 0; j < dims; j++ {
		mins[j] = math.MaxFloat64
		maxs[j] = -math.MaxFloat64
	}

	for _, coord := range coords {
		for j, v := range coord {
			mins[j] = math.Min(mins[j], v)
			maxs[j] = math.Max(maxs[j], v)
		}
	}

	normalized := make([][]float64, len(coords))
	for i, coord := range coords {
		normalized[i] = make([]float64, dims)
		for j, v := range coord {
			// ranges below float noise collapse to the origin
			rng := maxs[j] - mins[j]
			if rng < 1e-12 {
				normalized[i][j] = 0
			} else {
				normalized[i][j] = 2*(v-mins[j])/rng - 1
			}
		}
	}

	return normalized
}
