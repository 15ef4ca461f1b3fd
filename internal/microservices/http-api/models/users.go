package models

import "time"

// User is an account row. PasswordHash is whatever the Identity Provider
// produced on the client side; it is stored and compared, never derived here.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
