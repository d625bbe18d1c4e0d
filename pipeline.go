package feathersync

import "sync"

// task splits data into one contiguous chunk per worker and runs fn on every
// element. With a single worker, or less data than workers, it runs inline.
func task[T any](workersCount int, data []T, fn func(data T)) {
	dataSize := len(data)
	if workersCount <= 1 || dataSize < workersCount {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for start := 0; start < dataSize; start += chunkSize {
		wg.Add(1)
		go func(chunk []T) {
			defer wg.Done()
			for _, d := range chunk {
				fn(d)
			}
		}(data[start:min(start+chunkSize, dataSize)])
	}
	wg.Wait()
}
