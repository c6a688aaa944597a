package aggregation

// dedupBy filters items down to the first occurrence per key, preserving
// encounter order. It is a pure function; callers compose it with whatever
// key extractor fits the collection.
func dedupBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
