package entities

import "time"

type DocketStatus string

const (
	DocketStatusOpen   DocketStatus = "open"
	DocketStatusClosed DocketStatus = "closed"
)

// Docket is a public comment period. Comments are accepted while the docket
// is open and now falls inside the optional opening window.
type Docket struct {
	DocketID  string
	TenantID  string
	Title     string
	Reference string
	Status    DocketStatus
	OpensAt   *time.Time
	ClosesAt  *time.Time
	CreatedBy string
	CreatedAt time.Time
}

func (d Docket) AcceptsComments(now time.Time) bool {
	if d.Status != DocketStatusOpen {
		return false
	}
	if d.OpensAt != nil && now.Before(*d.OpensAt) {
		return false
	}
	if d.ClosesAt != nil && !now.Before(*d.ClosesAt) {
		return false
	}
	return true
}
