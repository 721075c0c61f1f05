package account

import "github.com/fundwit/go-commons/types"

// User is a login account. Name carries the officer's national id so the
// login matches the identity document. A user may be linked to an officer
// record, which the request workflow requires for submitters.
type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name" gorm:"unique_index:uni_user_name"`
	Secret string   `json:"secret"`

	Nickname string `json:"nickname"`
	Role     string `json:"role"`

	OfficerID types.ID `json:"officerId"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`

	OfficerID types.ID `json:"officerId"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6,lte=32"`
}

type UserCreation struct {
	Name     string `json:"name" binding:"required,lte=32"`
	Secret   string `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Role     string `json:"role" binding:"required"`

	OfficerID types.ID `json:"officerId"`
}

type UserUpdation struct {
	Nickname string `json:"nickname" binding:"required,lte=32"`
	Role     string `json:"role"`

	OfficerID types.ID `json:"officerId"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}
