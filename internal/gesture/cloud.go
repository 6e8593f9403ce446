package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/geometry"
)

// matchEpsilon controls how many start offsets GreedyCloudMatch tries:
// a step of floor(n^(1-matchEpsilon)).
const matchEpsilon = 0.5

// GreedyCloudMatch returns the smallest weighted greedy matching distance
// between two equal-length point clouds, trying several start offsets in
// both directions. The result is symmetric in a and b.
//
// Both clouds must hold the same number of points. Empty clouds have
// distance +Inf.
func GreedyCloudMatch(a, b []geometry.Point) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return math.Inf(1)
	}

	step := int(math.Floor(math.Pow(float64(n), 1-matchEpsilon)))
	if step < 1 {
		step = 1
	}

	best := math.Inf(1)
	for i := 0; i < n; i += step {
		d1 := cloudDistance(a, b, i)
		d2 := cloudDistance(b, a, i)
		best = math.Min(best, math.Min(d1, d2))
	}
	return best
}

// cloudDistance greedily pairs every point of p1, starting at start and
// wrapping around, with its nearest unmatched point of p2. Earlier pairings
// weigh more.
func cloudDistance(p1, p2 []geometry.Point, start int) float64 {
	n := len(p1)
	matched := make([]bool, n)

	var sum float64
	i := start
	for {
		index := -1
		min := math.Inf(1)
		for j := range matched {
			if matched[j] {
				continue
			}
			if d := geometry.Distance(p1[i], p2[j]); d < min {
				min = d
				index = j
			}
		}
		matched[index] = true

		weight := 1 - float64((i-start+n)%n)/float64(n)
		sum += weight * min

		i = (i + 1) % n
		if i == start {
			break
		}
	}
	return sum
}

// Score converts a matching distance into a similarity in [0, 1].
// A distance of 0 scores 1; 2 or more scores 0.
func Score(distance float64) float64 {
	return math.Max((distance-2.0)/-2.0, 0.0)
}
