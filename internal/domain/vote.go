package domain

// Vote Model. Append-only: a vote row is never updated or deleted on its
// own, only cascaded away with its candidate.
type Vote struct {
	ID          uint  `gorm:"primaryKey" json:"id"`             // Primary key
	CandidateID uint  `gorm:"index;not null" json:"candidate_id"` // Foreign key to Candidate
	UserID      uint  `gorm:"index;not null" json:"user_id"`    // The voting user
	CreatedAt   int64 `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
