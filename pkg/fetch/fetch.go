// Package fetch performs one rate-limited network retrieval per link and
// classifies the response for extraction. It never touches the store; retry
// policy belongs to the pipeline coordinator, which knows each link's history.
package fetch

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ContentType is the coarse classification the extractor dispatches on.
type ContentType string

const (
	TypeHTML  ContentType = "html"
	TypePDF   ContentType = "pdf"
	TypeOther ContentType = "other"
)

// Media files are classified without a network call; there is no text to
// extract from them.
var mediaSuffixes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".mp4", ".mp3", ".wav"}

// Limiter grants per-origin permits before each request.
type Limiter interface {
	Acquire(ctx context.Context, origin string) error
}

// Result is one successful retrieval.
type Result struct {
	ContentType ContentType
	Body        []byte

	// FinalURL is the post-redirect URL, used for content-type inference
	// only; identity stays keyed on the requested URL.
	FinalURL string
}

// Config holds fetcher settings.
type Config struct {
	Limiter      Limiter
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// Fetcher retrieves link content over HTTP.
type Fetcher struct {
	config Config
	client *http.Client
}

// New creates a Fetcher. The request timeout bounds the whole exchange so a
// slow host cannot hang a pipeline worker.
func New(c Config) *Fetcher {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1_000_000
	}
	if c.UserAgent == "" {
		c.UserAgent = "linkdex/1.0"
	}

	return &Fetcher{
		config: c,
		client: &http.Client{Timeout: c.Timeout},
	}
}

// Fetch acquires a permit for the URL's origin, issues the request, follows
// redirects, and classifies the response. Failures surface as *NetworkError
// or *HTTPError; nothing is retried here.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if isMediaURL(rawURL) {
		return &Result{ContentType: TypeOther, FinalURL: rawURL}, nil
	}

	if f.config.Limiter != nil {
		if err := f.config.Limiter.Acquire(ctx, origin(rawURL)); err != nil {
			return nil, &NetworkError{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		ContentType: classify(resp.Header.Get("Content-Type"), finalURL),
		Body:        body,
		FinalURL:    finalURL,
	}, nil
}

// classify maps the Content-Type header to html/pdf/other, falling back to
// the final URL's path suffix when the header is absent or unhelpful.
func classify(header, finalURL string) ContentType {
	if header != "" {
		mediaType, _, err := mime.ParseMediaType(header)
		if err == nil {
			switch {
			case mediaType == "text/html" || mediaType == "application/xhtml+xml":
				return TypeHTML
			case mediaType == "application/pdf":
				return TypePDF
			case strings.HasPrefix(mediaType, "text/"):
				return TypeHTML
			default:
				return TypeOther
			}
		}
	}

	if hasSuffix(finalURL, ".pdf") {
		return TypePDF
	}
	return TypeHTML
}

func isMediaURL(rawURL string) bool {
	for _, suffix := range mediaSuffixes {
		if hasSuffix(rawURL, suffix) {
			return true
		}
	}
	return false
}

func hasSuffix(rawURL, suffix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(path.Ext(u.Path)), suffix)
}

func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
