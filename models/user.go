package models

import (
	"reservation-system/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username    string    `gorm:"size:150;uniqueIndex;not null"`
	Email       string    `gorm:"size:254;uniqueIndex;not null"`
	Password    string    `gorm:"not null"`
	PhoneNumber *string   `gorm:"size:15"`
	DateOfBirth *Date

	IsActive  bool `gorm:"default:true"`
	IsStaff   bool `gorm:"default:false"`
	LastLogin *time.Time

	Groups      []Group      `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE"`
	Permissions []Permission `gorm:"many2many:user_permissions;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Initialize UUID and hash the raw password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

func (u User) String() string {
	return u.Username
}

// Group and Permission back the authorization associations of a User.
type Group struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:150;uniqueIndex;not null"`
}

type Permission struct {
	ID       uint   `gorm:"primaryKey"`
	Codename string `gorm:"size:100;uniqueIndex;not null"`
	Name     string `gorm:"size:255;not null"`
}
