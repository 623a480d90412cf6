package domain

// ReportType classifies a moderation report.
type ReportType string

const (
	ReportSpam          ReportType = "spam"
	ReportAbuse         ReportType = "abuse"
	ReportFraud         ReportType = "fraud"
	ReportInappropriate ReportType = "inappropriate"
)

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportReviewing ReportStatus = "reviewing"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is filed by one user against another.
type Report struct {
	Base
	ReporterID string       `json:"reporterId"`
	ReportedID string       `json:"reportedId"`
	Type       ReportType   `json:"type"`
	Reason     string       `json:"reason,omitempty"`
	Status     ReportStatus `json:"status"`
}
