package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker *sonyflake.Sonyflake
)

func init() {
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		} else {
			return err
		}
	}

	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error; err != nil {
		return err
	}

	return nil
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	if !s.CanDo(authority.ActionManageUsers) {
		return nil, bizerror.ErrForbidden
	}

	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.CanDo(authority.ActionManageUsers) {
		return nil, bizerror.ErrForbidden
	}
	if _, found := authority.RoleGrants[c.Role]; !found {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown role '" + c.Role + "'")}
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Role: c.Role, OfficerID: c.OfficerID}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname,
		Role: user.Role, OfficerID: user.OfficerID}, nil
}

// UpdateUser changes nickname for the user itself; role and officer link
// changes are reserved to user managers.
func UpdateUser(userId types.ID, c *UserUpdation, s *session.Session) error {
	manager := s.CanDo(authority.ActionManageUsers)
	if !manager && userId != s.Identity.ID {
		return bizerror.ErrForbidden
	}
	if manager && c.Role != "" {
		if _, found := authority.RoleGrants[c.Role]; !found {
			return &bizerror.ErrBadParam{Cause: errors.New("unknown role '" + c.Role + "'")}
		}
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}

		cols := map[string]interface{}{"nickname": c.Nickname}
		if manager {
			if c.Role != "" {
				cols["role"] = c.Role
			}
			cols["officer_id"] = c.OfficerID
		}
		return tx.Model(&user).Update(cols).Error
	})
}

func QueryAccountNames(ids []types.ID, s *session.Session) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
