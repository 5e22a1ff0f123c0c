package domain

// User Model
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	Username      string `gorm:"unique;not null" json:"username"`        // Unique username
	AadhaarNumber string `gorm:"unique;not null" json:"aadhaar_number"`  // Unique national ID, used for login
	Password      string `gorm:"not null" json:"-"`                      // Hashed password, never serialized
	Role          string `gorm:"default:voter" json:"role"`              // Role: voter or admin
	IsVoted       bool   `gorm:"not null;default:false" json:"is_voted"` // True once the user has cast a vote
}
