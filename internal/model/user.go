package model

import (
	"time"
)

type Role string

const (
	RoleMember   Role = "MEMBER"
	RoleApprover Role = "APPROVER"
)

// User represents an account able to own purchase requests
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (r Role) IsApprover() bool {
	return r == RoleApprover
}
