// Package collection provides generic helpers for slices.
//
//	ids := collection.Unique(collection.Map(orders, func(o models.Order) primitive.ObjectID { return o.UserID }))
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Unique returns s without repeated elements, keeping first occurrences.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Sum adds the values extracted by fn.
func Sum[T any](s []T, fn func(T) float64) float64 {
	var total float64
	for _, v := range s {
		total += fn(v)
	}
	return total
}
