package upstream

import "sync"

// BoundedMap runs fn(item) for every item in items with at most limit
// concurrent invocations, returning results in input order. A failing item
// does not abort the batch: its result is the zero value and failed reports
// which indices errored, so callers can log and drop them.
func BoundedMap[T any, R any](items []T, limit int, fn func(T) (R, error)) ([]R, []bool) {
	if limit <= 0 {
		limit = 1
	}

	results := make([]R, len(items))
	failed := make([]bool, len(items))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()

			r, err := fn(item)
			if err != nil {
				failed[i] = true
				return
			}
			results[i] = r
		}(i, item)
	}

	wg.Wait()
	return results, failed
}
