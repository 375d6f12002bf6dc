package storage

import (
	"time"

	"github.com/thinkful-ei-bee/thingful/libs/auth"
)

type Thing struct {
	ID          int64
	Title       string
	Image       string
	Content     string
	DateCreated time.Time
	UserID      *int64
}

// ThingSummary is a thing with its review aggregates.
type ThingSummary struct {
	Thing
	NumberOfReviews     int
	AverageReviewRating float64
}

type Review struct {
	ID          int64
	Text        string
	Rating      int
	ThingID     int64
	DateCreated time.Time
	User        auth.User
}

type NewReview struct {
	ThingID int64
	UserID  int64
	Text    string
	Rating  int
}
