package domain

import (
	"time"
)

// Document represents the source PDF file being processed
type Document struct {
	FilePath    string
	TotalPages  int
	Fingerprint string
}

// PageImage represents a single rendered PDF page
type PageImage struct {
	PageNumber int
	ImagePath  string // Path to the PNG written under the output images directory
	DPI        int
	Width      int
	Height     int
}

// PageSummary is the short gist of one page's explanation, used as context
// for later pages.
type PageSummary struct {
	PageNumber int
	Text       string
}

// PageResult is the unit of output and the unit of caching.
type PageResult struct {
	PageNumber  int    `json:"page"`
	ImagePath   string `json:"image_path"`
	Explanation string `json:"explanation"`
}

// CacheRecord is the persisted form of one run's results.
type CacheRecord struct {
	Version     int          `json:"version"`
	Fingerprint string       `json:"fingerprint"`
	Source      string       `json:"source"`
	Provider    string       `json:"provider,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Pages       []PageResult `json:"pages"`
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart          EventType = "start"
	EventCacheHit       EventType = "cache_hit"
	EventRangeSelected  EventType = "range_selected"
	EventPageExtracted  EventType = "page_extracted"
	EventPageProcessing EventType = "page_processing"
	EventPageComplete   EventType = "page_complete"
	EventPageFailed     EventType = "page_failed"
	EventError          EventType = "error"
	EventComplete       EventType = "complete"
)

// StreamEvent represents an event emitted during processing. Page complete
// and page failed events carry the page's PageResult as payload.
type StreamEvent struct {
	Type       EventType   `json:"type"`
	PageNumber int         `json:"page_number,omitempty"`
	Total      int         `json:"total,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ProcessingStats contains metadata about one run
type ProcessingStats struct {
	RunID           string
	TotalTime       time.Duration
	PagesProcessed  int
	SuccessfulPages int
	FailedPages     int
	CacheHit        bool
}

// RunResult is what a completed run hands to document generation.
type RunResult struct {
	Document Document
	Pages    []PageResult
	Stats    ProcessingStats
}
