package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Privilege ranks. Rank 0 is an ordinary member; rank 5 is the highest
// administrative tier and gates rank administration and source disclosure.
const (
	RankMember = 0
	RankAdmin  = 5
)

// User represents a registered account of the chat client.
type User struct {
	ID           string     `json:"userId" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username     string     `json:"username" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	UsernameKey  string     `json:"-" gorm:"uniqueIndex;type:varchar(100)"` // case-folded lookup key
	PasswordHash string     `json:"-" gorm:"type:varchar(255)"`             // No json tag for security
	Rank         int        `json:"rank" gorm:"default:0" validate:"gte=0,lte=5"`
	Banned       bool       `json:"banned" gorm:"default:false"`
	DeviceInfo   string     `json:"-" gorm:"type:text"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	Nickname     string     `json:"nickname,omitempty" gorm:"type:varchar(100)"`
	ProfilePic   string     `json:"profilePicture,omitempty" gorm:"type:varchar(255)"`
	Banner       string     `json:"banner,omitempty" gorm:"type:varchar(255)"`
	Status       string     `json:"status,omitempty" gorm:"type:varchar(50)"`
	AboutMe      string     `json:"aboutMe,omitempty" gorm:"type:text"`
	gorm.Model   `json:"-"` // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// UsernameFold returns the canonical lookup key for a username. Uniqueness is
// case-insensitive: "Alice" and "alice" are the same identity.
func UsernameFold(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidRank reports whether rank is within the 0-5 privilege scale.
func ValidRank(rank int) bool {
	return rank >= RankMember && rank <= RankAdmin
}
