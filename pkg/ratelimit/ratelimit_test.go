package ratelimit_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/ratelimit"
)

var _ = Describe("PerOrigin", func() {
	It("spaces acquires for one origin by at least the refill interval", func() {
		// 20 req/s -> 50ms interval; 4 acquires need >= 150ms total.
		limiter := ratelimit.NewPerOrigin(20)
		ctx := context.Background()

		start := time.Now()
		for range 4 {
			Expect(limiter.Acquire(ctx, "https://example.com")).To(Succeed())
		}
		elapsed := time.Since(start)

		Expect(elapsed).To(BeNumerically(">=", 150*time.Millisecond))
	})

	It("does not serialize distinct origins against each other", func() {
		limiter := ratelimit.NewPerOrigin(2)
		ctx := context.Background()

		origins := []string{
			"https://a.example",
			"https://b.example",
			"https://c.example",
			"https://d.example",
		}

		start := time.Now()
		var wg sync.WaitGroup
		for _, origin := range origins {
			wg.Add(1)
			go func() {
				defer wg.Done()
				Expect(limiter.Acquire(ctx, origin)).To(Succeed())
			}()
		}
		wg.Wait()

		// First token per origin is immediate; a global 2 req/s limiter
		// would have taken over a second for four acquires.
		Expect(time.Since(start)).To(BeNumerically("<", 500*time.Millisecond))
	})

	It("is safe for many concurrent callers on one origin", func() {
		limiter := ratelimit.NewPerOrigin(1000)
		ctx := context.Background()

		var wg sync.WaitGroup
		for range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				Expect(limiter.Acquire(ctx, "https://example.com")).To(Succeed())
			}()
		}
		wg.Wait()
	})

	It("honors context cancellation while waiting", func() {
		limiter := ratelimit.NewPerOrigin(0.1)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		// Burn the initial token, then the next acquire must wait ~10s.
		Expect(limiter.Acquire(context.Background(), "https://slow.example")).To(Succeed())
		err := limiter.Acquire(ctx, "https://slow.example")
		Expect(err).To(HaveOccurred())
	})

	It("treats a non-positive rate as unlimited", func() {
		limiter := ratelimit.NewPerOrigin(0)
		ctx := context.Background()

		start := time.Now()
		for range 100 {
			Expect(limiter.Acquire(ctx, "https://example.com")).To(Succeed())
		}
		Expect(time.Since(start)).To(BeNumerically("<", 100*time.Millisecond))
	})
})
