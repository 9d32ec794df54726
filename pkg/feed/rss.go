// Package feed renders link records as an RSS 2.0 feed.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/daylogco/linkdex/pkg/link"
)

const rfc822 = "Mon, 02 Jan 2006 15:04:05 -0700"

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        guid     `xml:"guid"`
	Categories  []string `xml:"category,omitempty"`
}

type guid struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Options describe the feed channel.
type Options struct {
	Title       string
	Description string
	SiteURL     string
}

// RenderRSS produces an RSS 2.0 document from records, which are expected to
// arrive newest first. Item titles prefer the fetched page title, and item
// descriptions prefer the generated summary over note commentary.
func RenderRSS(records []*link.Record, opts Options) ([]byte, error) {
	ch := channel{
		Title:         opts.Title,
		Link:          opts.SiteURL,
		Description:   opts.Description,
		LastBuildDate: time.Now().Format(rfc822),
	}

	for _, rec := range records {
		it := item{
			Title: itemTitle(rec),
			Link:  rec.URL,
			GUID:  guid{IsPermaLink: "true", Value: rec.URL},
		}

		if rec.Summary != nil && *rec.Summary != "" {
			it.Description = *rec.Summary
		} else if rec.Description != "" {
			it.Description = rec.Description
		}

		if !rec.FirstSeen.IsZero() {
			// Note dates have no time of day; noon keeps readers from
			// shifting the date across timezones.
			pub := time.Date(rec.FirstSeen.Year(), rec.FirstSeen.Month(), rec.FirstSeen.Day(), 12, 0, 0, 0, time.UTC)
			it.PubDate = pub.Format(rfc822)
		}

		for _, tag := range rec.Tags {
			it.Categories = append(it.Categories, tag.Name)
		}

		ch.Items = append(ch.Items, it)
	}

	doc, err := xml.MarshalIndent(rss{Version: "2.0", Channel: ch}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss: %w", err)
	}

	return append([]byte(xml.Header), doc...), nil
}

func itemTitle(rec *link.Record) string {
	switch {
	case rec.PageTitle != "":
		return rec.PageTitle
	case rec.Title != "":
		return rec.Title
	case rec.Description != "":
		return rec.Description
	default:
		return rec.URL
	}
}
