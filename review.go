package reviewserver

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the dataset and the
// vector index metadata.
const DateLayout = "2006-01-02"

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ReviewID is the review's row index in the durable dataset, assigned by
// the dataset adapter when the row is appended.
type ReviewID int64

func (id ReviewID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type ReviewStatus string

const (
	ReviewStatusPending        ReviewStatus = "PENDING"
	ReviewStatusIndexed        ReviewStatus = "INDEXED"
	ReviewStatusIndexingFailed ReviewStatus = "INDEXING_FAILED"
)

type Review struct {
	ID            ReviewID
	Title         string
	Content       string
	Rating        float64
	Date          string
	Status        ReviewStatus
	StatusMessage string
	Created       time.Time
	Updated       time.Time
}

// CompleteWithStatus changes the status of a pending review to a
// completion status, either ReviewStatusIndexed or ReviewStatusIndexingFailed.
func (r *Review) CompleteWithStatus(newStatus ReviewStatus, message string, updatedAt time.Time) error {
	if r.Status != ReviewStatusPending {
		return fmt.Errorf("cannot change status from %s to %s", r.Status, newStatus)
	}

	r.Status = newStatus
	r.StatusMessage = message
	r.Updated = updatedAt

	log.Printf("state change for review: %s status: %s", r.ID, r.Status)

	return nil
}

type ReviewFilter struct {
	Status ReviewStatus
}

// ReviewParams is the shape of a new review as submitted over the API.
type ReviewParams struct {
	Title   string
	Content string
	Rating  float64
	Date    string
}

func (p ReviewParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if strings.TrimSpace(p.Content) == "" {
		return ValidationError{Field: "review_content", Reason: "must not be blank"}
	}
	if p.Rating < MinRating || p.Rating > MaxRating {
		return ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("must be between %.1f and %.1f", MinRating, MaxRating),
		}
	}
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return ValidationError{Field: "date", Reason: "must be a YYYY-MM-DD date"}
	}
	return nil
}
