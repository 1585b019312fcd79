package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Email         string    `json:"email" gorm:"unique;not null"`
	Password      string    `json:"-" gorm:"not null"` // Hide password in JSON
	Alias         string    `json:"alias"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Career        string    `json:"career"`
	Bio           string    `json:"bio"`
	SkillsOffered string    `json:"skills_offered"`
	SkillsWanted  string    `json:"skills_wanted"`
	Role          string    `json:"role" gorm:"default:student"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate hook for password hashing
func (u *User) BeforeCreate(tx *gorm.DB) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies the password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// DisplayName is the public name shown in chats and notifications.
// Alias wins; otherwise first/last name; otherwise a numbered fallback.
func (u *User) DisplayName() string {
	if u.Alias != "" {
		return u.Alias
	}
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	return fmt.Sprintf("User %d", u.ID)
}
