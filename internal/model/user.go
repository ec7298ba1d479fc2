package model

import "time"

// User is the identity snapshot the marketplace keeps for ownership and
// carrier validation. Registration, login and password reset live in a
// separate service.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Role      Role      `gorm:"type:varchar(16);not null" json:"role"`
	Approved  bool      `gorm:"not null;default:false" json:"approved"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role, Approved: u.Approved, Active: u.Active}
}
