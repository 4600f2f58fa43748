package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

// User is an account able to buy, and depending on role sell or moderate.
type User struct {
	ID                  uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email               string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash        string         `gorm:"column:password_hash;not null"`
	DisplayName         string         `gorm:"column:display_name;not null"`
	Role                enums.UserRole `gorm:"column:role;type:text;not null;default:'buyer'"`
	EmailDomainVerified bool           `gorm:"column:email_domain_verified;not null;default:false"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
