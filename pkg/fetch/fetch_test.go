package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/fetch"
	"github.com/daylogco/linkdex/pkg/ratelimit"
)

// recordingLimiter captures the origins permits were requested for.
type recordingLimiter struct {
	mu      sync.Mutex
	origins []string
}

func (r *recordingLimiter) Acquire(_ context.Context, origin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origins = append(r.origins, origin)
	return nil
}

var _ = Describe("Fetcher", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns HTML bodies with the html classification", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer srv.Close()

		f := fetch.New(fetch.Config{})
		res, err := f.Fetch(ctx, srv.URL)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ContentType).To(Equal(fetch.TypeHTML))
		Expect(string(res.Body)).To(ContainSubstring("hello"))
		Expect(res.FinalURL).To(Equal(srv.URL))
	})

	It("classifies PDFs by header", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer srv.Close()

		f := fetch.New(fetch.Config{})
		res, err := f.Fetch(ctx, srv.URL)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ContentType).To(Equal(fetch.TypePDF))
	})

	It("falls back to the URL suffix when the header is missing", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Content-Type"] = nil
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer srv.Close()

		f := fetch.New(fetch.Config{})
		res, err := f.Fetch(ctx, srv.URL+"/paper.pdf")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ContentType).To(Equal(fetch.TypePDF))
	})

	It("classifies media URLs as other without a network call", func() {
		f := fetch.New(fetch.Config{})
		res, err := f.Fetch(ctx, "https://example.com/photo.png")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ContentType).To(Equal(fetch.TypeOther))
		Expect(res.Body).To(BeEmpty())
	})

	It("surfaces non-2xx responses as HTTPError", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		f := fetch.New(fetch.Config{})
		_, err := f.Fetch(ctx, srv.URL)

		var httpErr *fetch.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.Status).To(Equal(http.StatusNotFound))
		Expect(httpErr.Retryable()).To(BeFalse())
	})

	It("marks 429 and 5xx as retryable", func() {
		Expect((&fetch.HTTPError{Status: 429}).Retryable()).To(BeTrue())
		Expect((&fetch.HTTPError{Status: 503}).Retryable()).To(BeTrue())
		Expect((&fetch.HTTPError{Status: 403}).Retryable()).To(BeFalse())
	})

	It("surfaces timeouts as NetworkError", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		f := fetch.New(fetch.Config{Timeout: 20 * time.Millisecond})
		_, err := f.Fetch(ctx, srv.URL)

		var netErr *fetch.NetworkError
		Expect(errors.As(err, &netErr)).To(BeTrue())
	})

	It("records the final URL after redirects", func() {
		var target string
		mux := http.NewServeMux()
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, target, http.StatusFound)
		})
		mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		target = srv.URL + "/end"

		f := fetch.New(fetch.Config{})
		res, err := f.Fetch(ctx, srv.URL+"/start")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.FinalURL).To(Equal(target))
	})

	It("caps the body at MaxBodyBytes", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			for range 1000 {
				_, _ = w.Write([]byte("0123456789"))
			}
		}))
		defer srv.Close()

		f := fetch.New(fetch.Config{MaxBodyBytes: 64})
		res, err := f.Fetch(ctx, srv.URL)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Body).To(HaveLen(64))
	})

	It("acquires a permit keyed by the URL's origin", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer srv.Close()

		limiter := &recordingLimiter{}
		f := fetch.New(fetch.Config{Limiter: limiter})
		_, err := f.Fetch(ctx, srv.URL+"/a/b?c=d")

		Expect(err).NotTo(HaveOccurred())
		Expect(limiter.origins).To(Equal([]string{srv.URL}))
	})

	It("spaces same-origin fetches with a real limiter", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer srv.Close()

		// 20 req/s -> three fetches need at least 100ms.
		f := fetch.New(fetch.Config{Limiter: ratelimit.NewPerOrigin(20)})

		start := time.Now()
		for range 3 {
			_, err := f.Fetch(ctx, srv.URL)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(time.Since(start)).To(BeNumerically(">=", 100*time.Millisecond))
	})
})
