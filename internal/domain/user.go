package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

type AuthProvider string

const (
	ProviderLocal    AuthProvider = "LOCAL"
	ProviderGoogle   AuthProvider = "GOOGLE"
	ProviderKakao    AuthProvider = "KAKAO"
	ProviderFirebase AuthProvider = "FIREBASE"
)

// User is the identity record. Email is stored lowercased; PasswordHash is
// empty for social-only accounts.
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"size:128" json:"-"`
	Name         string       `gorm:"size:128;not null" json:"name"`
	Role         UserRole     `gorm:"size:16;not null;default:USER" json:"role"`
	Status       UserStatus   `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	Provider     AuthProvider `gorm:"size:16;not null;default:LOCAL" json:"provider"`
	ProviderID   *string      `gorm:"size:128;uniqueIndex" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
