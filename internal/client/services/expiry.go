package services

import (
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
)

// ExpiryStatus classifies a supply by its expiry date.
type ExpiryStatus int

const (
	ExpiryNone ExpiryStatus = iota
	ExpiryOK
	ExpiryNear
	ExpiryExpired
)

func (s ExpiryStatus) String() string {
	switch s {
	case ExpiryOK:
		return "ok"
	case ExpiryNear:
		return "near-expiry"
	case ExpiryExpired:
		return "expired"
	default:
		return "none"
	}
}

const dateLayout = "2006-01-02"

// ClassifyExpiry: expired when the date is before today; near when it is
// after now and no more than one month ahead.
func ClassifyExpiry(s models.Supply, now time.Time) ExpiryStatus {
	if s.ExpiryDate == "" {
		return ExpiryNone
	}
	exp, err := time.ParseInLocation(dateLayout, s.ExpiryDate, now.Location())
	if err != nil {
		return ExpiryNone
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if exp.Before(today) {
		return ExpiryExpired
	}
	if exp.After(now) && !exp.After(now.AddDate(0, 1, 0)) {
		return ExpiryNear
	}
	return ExpiryOK
}

// ExpiryReport splits records into expired and near-expiry lists, each in
// input order.
func ExpiryReport(records []models.Supply, now time.Time) (expired, near []models.Supply) {
	expired, near = []models.Supply{}, []models.Supply{}
	for _, r := range records {
		switch ClassifyExpiry(r, now) {
		case ExpiryExpired:
			expired = append(expired, r)
		case ExpiryNear:
			near = append(near, r)
		}
	}
	return expired, near
}
