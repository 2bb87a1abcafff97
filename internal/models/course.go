package models

// CourseSummary is display metadata only (breadcrumbs, dashboard cards).
type CourseSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}
