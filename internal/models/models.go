package models

import "time"

// User represents an account within the ClipTube platform.
//
// RefreshToken holds the single active refresh credential for the account;
// an empty value means the user has no active session.
type User struct {
	ID           string
	Username     string
	Email        string
	Fullname     string
	Password     string
	AvatarURL    string
	CoverURL     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a user exposed in read views.
type Profile struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Profile returns the public projection of the user.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Fullname: u.Fullname, Username: u.Username, Avatar: u.AvatarURL}
}

// Sanitized strips credentials before the record leaves the service.
func (u User) Sanitized() SanitizedUser {
	return SanitizedUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Fullname:  u.Fullname,
		Avatar:    u.AvatarURL,
		Cover:     u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SanitizedUser is the account shape returned from auth endpoints. It never
// carries the password hash or the stored refresh token.
type SanitizedUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	Avatar    string    `json:"avatar"`
	Cover     string    `json:"cover"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Video is an uploaded clip owned by exactly one user.
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     float64
	Views        int64
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment is a remark left on a video, owned by its author.
type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Like marks a user's approval of exactly one of a video or a comment.
// At most one like exists per (user, target) pair.
type Like struct {
	ID        string
	UserID    string
	VideoID   string
	CommentID string
	CreatedAt time.Time
}

// Playlist is an unordered, duplicate-free set of video references owned by
// a single user.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	VideoIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
