package swiss

import (
	"sort"
	"strings"
)

// MatchupCount is how many failure signatures contain a key.
type MatchupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func splitSignature(signature string) []string {
	if signature == "" {
		return nil
	}
	return strings.Split(signature, ",")
}

func sortCounts(counts map[string]int) []MatchupCount {
	list := make([]MatchupCount, 0, len(counts))
	for k, c := range counts {
		list = append(list, MatchupCount{Key: k, Count: c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Key < list[j].Key
	})
	return list
}

// MatchupCounts counts every "winner>loser" edge over the unique signatures,
// most frequent first.
func MatchupCounts(signatures []string) []MatchupCount {
	counts := map[string]int{}
	for _, sig := range signatures {
		for _, edge := range splitSignature(sig) {
			counts[edge]++
		}
	}
	return sortCounts(counts)
}

// SubsetCounts counts every subset of up to maxSize edges over the
// signatures. Subset keys are sorted and comma joined.
func SubsetCounts(signatures []string, maxSize int) map[string]int {
	counts := map[string]int{}
	for _, sig := range signatures {
		edges := splitSignature(sig)
		sort.Strings(edges)
		limit := len(edges)
		if maxSize > 0 && maxSize < limit {
			limit = maxSize
		}
		for size := 1; size <= limit; size++ {
			eachCombination(len(edges), size, func(indices []int) {
				subset := make([]string, size)
				for i, idx := range indices {
					subset[i] = edges[idx]
				}
				counts[strings.Join(subset, ",")]++
			})
		}
	}
	return counts
}

// eachCombination calls fn with every size-element index combination of
// 0..n-1 in lexicographic order. indices is reused between calls.
func eachCombination(n, size int, fn func(indices []int)) {
	if size > n || size < 1 {
		return
	}
	indices := make([]int, size)
	for i := range indices {
		indices[i] = i
	}
	for {
		fn(indices)
		// move to next combination (lexicographic order)
		i := size - 1
		for ; i >= 0; i-- {
			if indices[i] != i+n-size {
				break
			}
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < size; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

// TopSubsetsBySize groups subset counts by subset size and keeps the limit
// most frequent of each size.
func TopSubsetsBySize(counts map[string]int, limit int) map[int][]MatchupCount {
	bySize := map[int]map[string]int{}
	for key, c := range counts {
		size := len(splitSignature(key))
		if bySize[size] == nil {
			bySize[size] = map[string]int{}
		}
		bySize[size][key] = c
	}
	top := make(map[int][]MatchupCount, len(bySize))
	for size, group := range bySize {
		list := sortCounts(group)
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		top[size] = list
	}
	return top
}

// FindRoundExample returns the first round dump that contains every edge of subset.
func FindRoundExample(roundDetails []string, subset string) (string, bool) {
	edges := splitSignature(subset)
	for _, detail := range roundDetails {
		found := true
		for _, edge := range edges {
			if !strings.Contains(detail, edge) {
				found = false
				break
			}
		}
		if found {
			return detail, true
		}
	}
	return "", false
}
