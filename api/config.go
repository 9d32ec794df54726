// Package api provides the HTTP API server for querying the link index.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5001")
	ListenAddr string

	// FeedTitle and FeedDescription describe the RSS channel.
	FeedTitle       string
	FeedDescription string

	// SiteURL is the public base URL used in the RSS channel link.
	SiteURL string
}
