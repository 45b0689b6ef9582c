package entity

import "time"

// OauthToken is the tier-1 Microsoft credential. Rows are append-only; the
// current token is the youngest row.
type OauthToken struct {
	Base
	TokenType    string
	ExpiresIn    int
	Scope        string
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	UserID       string
}

func (t *OauthToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

func (t *OauthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt())
}
