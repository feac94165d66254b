// Package queue defines message payloads exchanged over the message broker.
package queue

// ReportSubmittedQueue is the durable queue hazard report events are
// published to and consumed from.
const ReportSubmittedQueue = "report.submitted"

// ReportSubmittedEvent is published when a hazard report is created.
// It carries enough for downstream consumers (alert log, analytics) to
// act without querying the primary database.
type ReportSubmittedEvent struct {
	ReportID       uint64  `json:"report_id"`
	UserID         uint64  `json:"user_id"`
	EventType      string  `json:"event_type"`
	ReportCategory string  `json:"report_category"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	MediaCount     int     `json:"media_count"`
	SubmittedAt    string  `json:"submitted_at"`
}
