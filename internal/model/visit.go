package model

import (
	"time"

	"github.com/google/uuid"
)

type PageVisit struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Path      string    `db:"path" json:"path"`
	Referrer  string    `db:"referrer" json:"referrer"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	VisitedAt time.Time `db:"visited_at" json:"visited_at"`
}

type TrackVisitRequest struct {
	Path     string `json:"path" binding:"required,max=512"`
	Referrer string `json:"referrer" binding:"max=1024"`
}

// DailyBucket holds one calendar day of the visit/signup report.
type DailyBucket struct {
	Date    string `json:"date"`
	Visits  int    `json:"visits"`
	Signups int    `json:"signups"`
}

type SignupReport struct {
	Days           []DailyBucket `json:"days"`
	TotalVisits    int           `json:"total_visits"`
	TotalSignups   int           `json:"total_signups"`
	ConversionRate string        `json:"conversion_rate"`
}
