package user

import (
	"time"
)

// User represents the users table. The messaging core only needs the
// directory surface: identity, display info and the active flag that gates
// participation.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	FullName     string `gorm:"size:100;not null"`
	UserType     string `gorm:"size:20;not null;default:player"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// Roles a user can have on the platform.
const (
	TypePlayer = "player"
	TypeOwner  = "owner"
	TypeAdmin  = "admin"
)
