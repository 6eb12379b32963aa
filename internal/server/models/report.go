package models

import "time"

// Report flags a fish for moderation. Reports are append-only.
type Report struct {
	ID        string        `json:"id"`
	FishID    string        `json:"fishId"`
	Reason    string        `json:"reason"`
	Context   ReportContext `json:"context"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ReportContext carries diagnostics sent along with a report.
type ReportContext struct {
	UserAgent string            `json:"userAgent,omitempty"`
	URL       string            `json:"url,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}
