package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleLeader Role = "LEADER"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLeader, RoleMember:
		return true
	}
	return false
}

type User struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName  string         `gorm:"type:varchar(100);not null" json:"display_name"`
	FirstName    string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(100)" json:"last_name"`
	AvatarURL    string         `gorm:"type:varchar(500)" json:"avatar_url"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	TierID       string         `gorm:"type:varchar(36);not null;index" json:"tier_id"`
	Points       int64          `gorm:"not null;default:0" json:"points"`
	Balance      int64          `gorm:"not null;default:0" json:"balance"`
	StreakDays   int            `gorm:"not null;default:0" json:"streak_days"`
	LastActiveAt *time.Time     `json:"last_active_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tier *Tier `gorm:"foreignKey:TierID" json:"tier,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// RecordActivity updates the daily streak for activity at now. Activity on
// the day after the last active day extends the streak, a longer gap restarts
// it, and repeated activity on the same day leaves it unchanged.
func (u *User) RecordActivity(now time.Time) {
	if u.LastActiveAt == nil {
		u.StreakDays = 1
	} else {
		switch days := daysBetween(*u.LastActiveAt, now); {
		case days <= 0:
			if u.StreakDays == 0 {
				u.StreakDays = 1
			}
		case days == 1:
			u.StreakDays++
		default:
			u.StreakDays = 1
		}
	}
	u.LastActiveAt = &now
}

// daysBetween counts calendar days from a to b in b's location.
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	dayA := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, b.Location())
	dayB := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(dayB.Sub(dayA).Hours()/24 + 0.5)
}
