package graph

// CountBy tallies how many items fall into each group. The key function
// returns the group and whether the item should be counted at all.
func CountBy[T any, K comparable](items []T, key func(T) (K, bool)) map[K]int {
	counts := make(map[K]int)
	for _, item := range items {
		if k, ok := key(item); ok {
			counts[k]++
		}
	}
	return counts
}
