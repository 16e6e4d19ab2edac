package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User is an identity known to the portal.
type User struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	AccountID string         `json:"account_id" gorm:"size:128;index"`
	LicenseID string         `json:"license_id" gorm:"size:128;index"`
	Username  string         `json:"username" gorm:"size:128;not null"`
	Email     string         `json:"email" gorm:"size:256;not null"`
	Roles     pq.StringArray `json:"roles" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Principal converts the stored user into the canonical acting identity.
func (u *User) Principal() Principal {
	return Principal{
		ID:        u.ID,
		LicenseID: u.LicenseID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     append([]string(nil), u.Roles...),
	}
}

// UpdateRolesRequest is the body of PUT /users/:id/roles.
type UpdateRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}
