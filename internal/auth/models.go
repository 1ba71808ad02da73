package auth

import "time"

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"size:16;not null;default:'franchise'" json:"role"`
	FranchiseID    *uint     `gorm:"index" json:"franchise_id,omitempty"`
	FranchiseName  *string   `json:"franchise_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (User) TableName() string { return "tawkr.users" }
