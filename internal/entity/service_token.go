package entity

// ServiceToken authenticates a service account (the Discord bot). Key holds
// the HMAC-SHA256 of the issued opaque token keyed by the configured secret;
// the plain token is shown once at issue time and never stored.
type ServiceToken struct {
	Base
	Name string `gorm:"unique"`
	Key  string `gorm:"unique"`
}
