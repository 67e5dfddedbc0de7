package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleMember ProjectRole = "member"
)

type Project struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	InviteCode  string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	OwnerID     string         `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Columns []Column        `gorm:"foreignKey:ProjectID" json:"columns,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type ProjectMember struct {
	ProjectID string      `gorm:"type:varchar(36);primaryKey" json:"project_id"`
	UserID    string      `gorm:"type:varchar(36);primaryKey;index" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  time.Time   `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Column is a kanban column of a project board.
type Column struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID string    `gorm:"type:varchar(36);not null;index" json:"project_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Column) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
