package route

import "github.com/baustructura/bau-geo/internal/marker"

// Optimize returns a visiting order for markers built by nearest neighbour:
// the first and last marker stay in place and every intermediate stop is
// visited next if it is the closest remaining one. The result is a
// permutation suitable for marker.Store.Reorder.
func Optimize(markers []marker.Marker) []int {
	n := len(markers)
	order := make([]int, 0, n)
	if n < 3 {
		for i := 0; i < n; i++ {
			order = append(order, i)
		}
		return order
	}

	remaining := make([]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		remaining = append(remaining, i)
	}

	current := 0
	order = append(order, current)
	for len(remaining) > 0 {
		nearest := 0
		best := Haversine(markers[current].Position, markers[remaining[0]].Position)
		for j := 1; j < len(remaining); j++ {
			if d := Haversine(markers[current].Position, markers[remaining[j]].Position); d < best {
				best = d
				nearest = j
			}
		}
		current = remaining[nearest]
		order = append(order, current)
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}
	return append(order, n-1)
}
