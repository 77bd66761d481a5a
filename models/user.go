package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserRole enum
type UserRole string

const (
	RoleCitizen   UserRole = "citizen"
	RoleAuthority UserRole = "authority"
	RoleAdmin     UserRole = "admin"
)

// ValidRole reports whether s is a member of the role enum.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleCitizen, RoleAuthority, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	Email     string              `bson:"email" json:"email"`
	Password  string              `bson:"password,omitempty" json:"-"`
	Role      UserRole            `bson:"role" json:"role"`
	WardID    *primitive.ObjectID `bson:"wardId,omitempty" json:"wardId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
