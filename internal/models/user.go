package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a registered account (PostgreSQL). Content documents in
// MongoDB reference users by UID, never by the numeric primary key.
type User struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	UID        string    `json:"uid" gorm:"size:64;uniqueIndex"`
	Fullname   string    `json:"fullname"`
	Username   string    `json:"username" gorm:"size:64;uniqueIndex"`
	Email      string    `json:"email" gorm:"uniqueIndex"`
	Password   string    `json:"-"`
	Bio        string    `json:"bio"`
	ProfileImg string    `json:"profile_img"`
	GoogleAuth bool      `json:"google_auth" gorm:"default:false"`
	TotalPosts int64     `json:"total_posts" gorm:"default:0"`
	CreatedAt  time.Time `json:"joined_at"`
	UpdatedAt  time.Time `json:"-"`
}

// UserCompact is the denormalized author/actor shape embedded in comment and
// notification views.
type UserCompact struct {
	UID        string `json:"uid"`
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

// ToCompact strips a user down to the fields views embed.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		UID:        u.UID,
		Fullname:   u.Fullname,
		Username:   u.Username,
		ProfileImg: u.ProfileImg,
	}
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Fullname string `json:"fullname" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

// SigninRequest defines the request body for local login
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest carries a Firebase ID token from Google sign-in
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// SearchUsersRequest finds users by a username substring
type SearchUsersRequest struct {
	Query string `json:"query" validate:"required,min=1,max=64"`
}

// GetProfileRequest fetches a public profile by username
type GetProfileRequest struct {
	Username string `json:"username" validate:"required"`
}

// UpdateProfileRequest changes the caller's username and bio
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Bio      string `json:"bio" validate:"max=150"`
}

// UpdateProfileImgRequest stores a new profile image URL. The URL is
// supplied by the client; this service never signs or uploads anything.
type UpdateProfileImgRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ChangePasswordRequest defines the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=64"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	UID    string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
