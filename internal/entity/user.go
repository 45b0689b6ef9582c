package entity

// User is a Discord community member known to the service. DiscordID is the
// snowflake rendered as a decimal string.
type User struct {
	Base
	DiscordID string `gorm:"unique"`
	Username  string
}
