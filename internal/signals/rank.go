package signals

import (
	"cmp"
	"slices"
)

// Rank 按 score 降序取前 k 个。同分保持输入顺序。
func Rank[T any](items []T, score func(T) int, k int) []T {
	if k <= 0 || len(items) == 0 {
		return []T{}
	}

	type scored struct {
		item  T
		score int
	}
	buf := make([]scored, len(items))
	for i, it := range items {
		buf[i] = scored{item: it, score: score(it)}
	}
	slices.SortStableFunc(buf, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	n := min(k, len(buf))
	out := make([]T, n)
	for i := range n {
		out[i] = buf[i].item
	}
	return out
}
