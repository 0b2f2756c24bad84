package warmup

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/modly/content"
	"github.com/viant/modly/shared"
)

const defaultConcurrency = 8

//Prefetch populates the content cache with the supplied URLs ahead of
//resolution demand. Fetches run on a bounded worker pool; a failed URL is
//collected and never stops the remaining ones. It returns the number of
//successfully cached URLs.
func Prefetch(ctx context.Context, cache *content.Service, URLs []string, concurrency int) (int, error) {
	if len(URLs) == 0 {
		return 0, nil
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(URLs) {
		concurrency = len(URLs)
	}
	queue := make(chan string)
	fetchErrors := shared.NewErrors()
	fetched := int32(0)
	wg := sync.WaitGroup{}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for URL := range queue {
				if _, err := cache.Fetch(ctx, URL); err != nil {
					fetchErrors.Append(err)
					continue
				}
				atomic.AddInt32(&fetched, 1)
			}
		}()
	}
	for _, URL := range URLs {
		queue <- URL
	}
	close(queue)
	wg.Wait()
	return int(atomic.LoadInt32(&fetched)), fetchErrors.Error()
}
