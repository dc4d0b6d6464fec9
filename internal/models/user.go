package models

import "time"

// Account model. Staff users manage other accounts; everyone else only
// touches their own content.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Username  string `gorm:"size:150;unique;not null;index"`
	Name      string // nom d'affichage, optionnel
	Password  string `gorm:"not null" json:"-"` // hashé (bcrypt)
	IsStaff   bool   `gorm:"not null;default:false"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the JSON shape exposed by the API; the hash never leaves the DB layer.
type PublicUser struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username, Name: u.Name, IsStaff: u.IsStaff, IsActive: u.IsActive}
}
