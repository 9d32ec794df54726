package eventstream

import (
	"time"

	"github.com/daylogco/linkdex/pkg/link"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeLinkProcessed is emitted after a link's pipeline outcome is
	// committed to the store.
	EventTypeLinkProcessed = "linkdex.link.processed"
)

// LinkProcessedEvent is a transport-neutral event payload for one committed
// pipeline outcome.
type LinkProcessedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	RunID         string    `json:"run_id"`

	URL       string `json:"url"`
	Domain    string `json:"domain"`
	FirstSeen string `json:"first_seen"`

	FetchStatus   link.FetchStatus   `json:"fetch_status"`
	SummaryStatus link.SummaryStatus `json:"summary_status"`
	TagStatus     link.TagStatus     `json:"tag_status"`
	TagNames      []string           `json:"tag_names,omitempty"`
}
