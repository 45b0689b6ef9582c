package entity

import "time"

// XstsToken is the tier-3 credential attached to every outbound game-API
// call.
type XstsToken struct {
	Base
	IssueInstant time.Time
	NotAfter     time.Time
	Token        string `gorm:"type:text"`
	Uhs          string
}

func (t *XstsToken) Expired(now time.Time) bool {
	return !now.Before(t.NotAfter)
}
