// Package resilience holds the circuit breaker and retry helpers used by
// source crawlers and notification channels.
//
//	b := circuitbreaker.New(circuitbreaker.ForSource("YahooFinance"))
//	err := retry.Do(ctx, retry.CrawlerConfig(), func() error {
//	    return b.Do(fetchPage)
//	})
package resilience
