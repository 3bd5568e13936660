package crawler

import "sort"

// Split partitions urls into chunks of len(urls)/n+1 items, filled in input
// order. Every URL lands in exactly one chunk. When the last chunk fills up
// exactly, an empty trailing chunk follows it; workers treat it as a
// zero-size task. An empty input yields no chunks, and n <= 0 is treated
// as 1.
func Split(urls []string, n int) [][]string {
	if len(urls) == 0 {
		return [][]string{}
	}
	if n <= 0 {
		n = 1
	}

	size := len(urls)/n + 1
	chunks := [][]string{make([]string, 0, size)}
	for _, u := range urls {
		last := len(chunks) - 1
		chunks[last] = append(chunks[last], u)
		if len(chunks[last]) == size {
			chunks = append(chunks, make([]string, 0, size))
		}
	}
	return chunks
}

// SetToSlice returns the members of set in sorted order.
func SetToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Label returns the progress label of worker i: "a" through "z", cycling.
func Label(i int) string {
	if i < 0 {
		i = -i
	}
	return string(rune('a' + i%26))
}
