package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleReader, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

const (
	DefaultBio = "Exploring the world of infinite possibilities, leaving a spark of love everywhere I go..!"
	DefaultImg = "https://upload.wikimedia.org/wikipedia/commons/thumb/7/7e/Circle-icons-profile.svg/512px-Circle-icons-profile.svg.png?20160314153816"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Username     string        `bson:"username" json:"username"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`
	Interests    []string      `bson:"interests" json:"interests"`
	Bio          string        `bson:"bio" json:"bio"`
	Img          string        `bson:"img" json:"img"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PublicProfile is the shape returned for profile reads: everything a
// client may see about another user.
type PublicProfile struct {
	ID        bson.ObjectID `json:"id"`
	Name      string        `json:"name"`
	Username  string        `json:"username"`
	Role      Role          `json:"role"`
	Interests []string      `json:"interests"`
	Bio       string        `json:"bio"`
	Img       string        `json:"img"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Role:      u.Role,
		Interests: u.Interests,
		Bio:       u.Bio,
		Img:       u.Img,
	}
}
