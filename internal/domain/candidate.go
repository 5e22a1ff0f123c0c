package domain

// Candidate Model
type Candidate struct {
	ID        uint   `gorm:"primaryKey" json:"id"`              // Primary key
	Name      string `gorm:"not null" json:"name"`              // Candidate name
	Party     string `gorm:"not null" json:"party"`             // Party label, used in tallies
	Age       int    `json:"age,omitempty"`                     // Optional profile field
	Bio       string `json:"bio,omitempty"`                     // Optional profile field
	VoteCount int    `gorm:"not null;default:0" json:"vote_count"` // Must always equal len(Votes)
	Votes     []Vote `gorm:"constraint:OnDelete:CASCADE;" json:"votes,omitempty"` // Votes cast for this candidate
}
