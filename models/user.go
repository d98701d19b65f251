package models

import (
	"time"

	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `json:"name"`
	Role     string    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity returns the request-scoped view of the user.
func (u User) Identity() AuthenticatedUser {
	return AuthenticatedUser{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin()}
}

// AuthenticatedUser is resolved once from the session token at the
// request boundary and passed down as plain data.
type AuthenticatedUser struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}
