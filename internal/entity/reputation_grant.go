package entity

// ReputationGrant records one "+rep" from giver to receiver. Rows are
// immutable after insert. Giver and receiver are Discord snowflakes.
type ReputationGrant struct {
	Base
	GiverID    string `gorm:"index"`
	ReceiverID string `gorm:"index"`
	Message    string `gorm:"size:2000"`
}
