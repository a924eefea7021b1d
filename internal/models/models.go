package models

import "time"

// Role is the authorization role of a user
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleContributor Role = "CONTRIBUTOR"
)

// DeviceType identifies the platform of a bound device
type DeviceType string

const (
	DeviceAndroid DeviceType = "android"
	DeviceIOS     DeviceType = "ios"
)

// Valid reports whether the device type is one of the known platforms
func (t DeviceType) Valid() bool {
	return t == DeviceAndroid || t == DeviceIOS
}

// User represents an account. A ghost user has no email or password,
// only a device binding.
type User struct {
	ID           string     `json:"id"`
	Email        *string    `json:"email,omitempty"`
	PasswordHash *string    `json:"-"`
	DisplayName  *string    `json:"display_name,omitempty"`
	Role         Role       `json:"role"`
	Devices      []Device   `json:"devices,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsGhost reports whether the user has not been upgraded to a full account
func (u *User) IsGhost() bool {
	return u.Email == nil
}

// PublicUser is the part of a user visible to other users
type PublicUser struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name,omitempty"`
}

// Public strips email, devices and login data from u
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, DisplayName: u.DisplayName}
}

// Device is a phone bound to exactly one user
type Device struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Type       DeviceType `json:"type"`
	Identifier string     `json:"identifier"`
}

// UserToken is returned after registration or login
type UserToken struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Location is a deduplicated coordinate pair
type Location struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

// Post is a located, timestamped set of photos
type Post struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creator_id"`
	LocationID  string     `json:"location_id"`
	Location    *Location  `json:"location,omitempty"`
	Public      bool       `json:"public"`
	Description *string    `json:"description,omitempty"`
	Created     time.Time  `json:"created"`
	Updated     time.Time  `json:"updated"`
	Photos      []*Photo   `json:"photos,omitempty"`
	Comments    []*Comment `json:"comments,omitempty"`
	LikeCount   int        `json:"like_count"`
	LikerIDs    []string   `json:"liker_ids,omitempty"`
	Cover       *Photo     `json:"cover,omitempty"`
}

// Photo belongs to exactly one post. Order 0 is the first cover candidate.
type Photo struct {
	ID       string `json:"id"`
	PostID   string `json:"post_id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Order    int    `json:"order"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`
}

// Comment is a short text attached to a post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	CreatorID string    `json:"creator_id"`
	Content   string    `json:"content"`
	Created   time.Time `json:"created"`
}

// PostLike is the join row between a user and a liked post
type PostLike struct {
	UserID  string    `json:"user_id"`
	PostID  string    `json:"post_id"`
	Created time.Time `json:"created"`
}

// LikeSummary aggregates the likes of a post
type LikeSummary struct {
	Count    int      `json:"count"`
	LikerIDs []string `json:"liker_ids"`
}

// Collection groups posts under a named, owned set
type Collection struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PostIDs     []string  `json:"post_ids"`
	Posts       []*Post   `json:"posts,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
