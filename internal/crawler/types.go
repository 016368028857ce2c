// Package crawler defines core types shared across the venue crawling subsystems.
package crawler

import (
	"time"
)

// JobStatus represents the lifecycle state of a crawl job.
type JobStatus string

// Job status values tracked in the job registry.
const (
	JobStatusCreated   JobStatus = "created"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// SearchState tracks a search job's progress through its pipeline.
type SearchState string

// Search job states, in order of progression.
const (
	SearchStateCreated        SearchState = "created"
	SearchStateNavigated      SearchState = "navigated"
	SearchStateFeedVisible    SearchState = "feed_visible"
	SearchStateScrollSettled  SearchState = "scroll_settled"
	SearchStateStubsExtracted SearchState = "stubs_extracted"
	SearchStateDispatched     SearchState = "dispatched"
	SearchStateDone           SearchState = "done"
	SearchStateFailed         SearchState = "failed"
)

// Venue is one discovered place. A venue starts as a feed stub (name, link,
// category, address) and is deepened in place by a PlaceJob.
type Venue struct {
	ID           string              `json:"id"`
	Cid          string              `json:"cid,omitempty"`
	Link         string              `json:"link"`
	Name         string              `json:"name"`
	Category     string              `json:"category,omitempty"`
	Categories   []string            `json:"categories,omitempty"`
	Address      string              `json:"address,omitempty"`
	Rating       float64             `json:"rating"`
	ReviewCount  int                 `json:"review_count"`
	PriceRange   string              `json:"price_range,omitempty"`
	Thumbnail    string              `json:"thumbnail,omitempty"`
	Website      string              `json:"website,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Latitude     float64             `json:"latitude,omitempty"`
	Longitude    float64             `json:"longitude,omitempty"`
	OpenHours    map[string][]string `json:"open_hours,omitempty"`
	PopularTimes map[string][]int    `json:"popular_times,omitempty"`
	Status       string              `json:"status,omitempty"`
	Reviews      []Review            `json:"reviews,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Valid reports whether the venue may enter a result set. Name and link are
// the required identity fields; everything else may be missing.
func (v Venue) Valid() bool {
	return v.Name != "" && v.Link != ""
}

// Review is one user review attached to a venue. The Time field carries the
// upstream relative label ("2 weeks ago"), not an absolute timestamp;
// CreatedAt records when the review was extracted.
type Review struct {
	Author     string    `json:"author"`
	AuthorLink string    `json:"author_link,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	Text       string    `json:"text,omitempty"`
	Time       string    `json:"time,omitempty"`
	LikeCount  int       `json:"like_count,omitempty"`
	ReplyCount int       `json:"reply_count,omitempty"`
	Photos     []string  `json:"photos,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Valid reports whether the review carries enough identity to persist.
// Reviews lacking both author and rating are discarded.
func (r Review) Valid() bool {
	return r.Author != "" || r.Rating > 0
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SearchResult is the run-level aggregate written by the sink. It is created
// once per invocation and never mutated after the snapshot is written.
type SearchResult struct {
	Query     string    `json:"query"`
	Location  Location  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	Places    []Venue   `json:"places"`
}

// JobRecord is the registry entry for a running or finished job.
type JobRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Status    JobStatus `json:"status"`
	ErrorText string    `json:"error_text,omitempty"`
	Created   time.Time `json:"created_at"`
}
