package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID         string    `gorm:"column:external_id;uniqueIndex;not null" json:"external_id"`
	Role               Role      `gorm:"column:role;type:varchar(16);not null" json:"role"`
	OnboardingComplete bool      `gorm:"column:onboarding_complete;not null" json:"onboarding_complete"`
	CreatedAt          time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
