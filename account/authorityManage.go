package account

import (
	"context"
	"errors"
	"os"

	"sigem/authority"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	LoadPermFunc = loadPerms
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

// DefaultSecurityConfiguration guarantees the bootstrap admin account exists
// so a fresh deployment is reachable.
func DefaultSecurityConfiguration() error {
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			initialAdminPassword := os.ExpandEnv("${INITIAL_ADMIN_PASSWORD}")
			if initialAdminPassword == "" {
				initialAdminPassword = "admin123"
			}
			return tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword),
				Role: authority.RoleAdmin}).Error
		}
		return err
	})
}

// loadPerms resolves a user's permission set and identity from its single
// role. The role string itself is carried in the permission list so callers
// can test role membership as well as granted actions.
func loadPerms(uid types.ID) (authority.Permissions, session.Identity) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: uid}).First(&user).Error; err != nil {
		panic(err)
	}

	perms := authority.Permissions{}
	if _, found := authority.RoleGrants[user.Role]; found {
		perms = append(perms, user.Role)
	}

	return perms, session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname, OfficerID: user.OfficerID}
}
