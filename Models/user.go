package Models

import (
	"gorm.io/gorm"
)

// Role values stored on users. Rank order: user < manager < admin.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

var roleRank = map[string]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// RoleRank returns the privilege rank for a role, 0 for unknown roles.
func RoleRank(role string) int {
	return roleRank[role]
}

type User struct {
	gorm.Model
	Username   string `json:"username" gorm:"not null;uniqueIndex"`
	Password   string `json:"-" gorm:"not null"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role" gorm:"not null;default:user"`
	AvatarPath string `json:"avatar_path,omitempty"`
}
