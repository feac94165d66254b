package model

import "time"

// Report status values for hazard_reports.report_status.
const (
	ReportUnverified = "Unverified"
	ReportValidated  = "Validated"
)

// Media types for media_uploads.media_type.
const (
	MediaImage = "Image"
	MediaVideo = "Video"
)

// HazardReport is a citizen-submitted observation of an ocean hazard.
// ReporterName and ReporterPhoto are populated only by list queries
// that join the reporting user; they are not columns of the table.
type HazardReport struct {
	ID                  uint64        `json:"report_id"`
	UserID              uint64        `json:"user_id"`
	EventType           string        `json:"event_type"`
	Description         string        `json:"description"`
	Latitude            float64       `json:"latitude"`
	Longitude           float64       `json:"longitude"`
	LocationDescription *string       `json:"location_description,omitempty"`
	ReportCategory      string        `json:"report_category"`
	SourceType          string        `json:"source_type"`
	ReportStatus        string        `json:"report_status"`
	SubmissionTime      time.Time     `json:"submission_time"`
	ValidatedBy         *uint64       `json:"validated_by,omitempty"`
	ValidatedTime       *time.Time    `json:"validated_time,omitempty"`
	Media               []MediaUpload `json:"media_uploads"`
	ReporterName        string        `json:"reporter_name,omitempty"`
	ReporterPhoto       *string       `json:"reporter_photo,omitempty"`
}

// MediaUpload is one file attached to a hazard report. FilePath holds
// the public URL returned by the blob store.
type MediaUpload struct {
	ID        uint64 `json:"media_id"`
	ReportID  uint64 `json:"report_id"`
	UserID    uint64 `json:"user_id"`
	MediaType string `json:"media_type"`
	FilePath  string `json:"file_path"`
}
