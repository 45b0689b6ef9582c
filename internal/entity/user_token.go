package entity

import "time"

// UserToken is the tier-2 Xbox Live credential derived from an OauthToken.
type UserToken struct {
	Base
	IssueInstant time.Time
	NotAfter     time.Time
	Token        string `gorm:"type:text"`
	Uhs          string
}

func (t *UserToken) Expired(now time.Time) bool {
	return !now.Before(t.NotAfter)
}
