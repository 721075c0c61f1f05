package unit

import (
	"sigem/authority"
	"sigem/bizerror"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	TypeGeneralCommand    = "GENERAL_COMMAND"
	TypeDirectionBody     = "DIRECTION_BODY"
	TypeSupportBody       = "SUPPORT_BODY"
	TypeExecutionBody     = "EXECUTION_BODY"
	TypeStaffSection      = "STAFF_SECTION"
	TypeBattalion         = "BATTALION"
	TypeIndependentCo     = "INDEPENDENT_COMPANY"
	TypePlatoon           = "PLATOON"
	TypeDetachment        = "DETACHMENT"
)

var Types = []string{
	TypeGeneralCommand, TypeDirectionBody, TypeSupportBody, TypeExecutionBody,
	TypeStaffSection, TypeBattalion, TypeIndependentCo, TypePlatoon, TypeDetachment,
}

type Unit struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"`

	// SuperiorID forms the command tree, zero for a root unit
	SuperiorID types.ID `json:"superiorId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UnitCreation struct {
	Name       string   `json:"name" binding:"required,lte=150"`
	Code       string   `json:"code" binding:"omitempty,lte=20"`
	Type       string   `json:"type" binding:"required"`
	SuperiorID types.ID `json:"superiorId"`
}

type UnitUpdating struct {
	Name       string   `json:"name" binding:"required,lte=150"`
	Code       string   `json:"code" binding:"omitempty,lte=20"`
	Type       string   `json:"type" binding:"required"`
	SuperiorID types.ID `json:"superiorId"`
}

var (
	unitIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// DeleteCheckFuncs let referencing packages block unit deletion
	DeleteCheckFuncs []func(u Unit, tx *gorm.DB) error

	CreateUnitFunc = CreateUnit
	UpdateUnitFunc = UpdateUnit
	DeleteUnitFunc = DeleteUnit
	QueryUnitsFunc = QueryUnits
)

func CreateUnit(c *UnitCreation, s *session.Session) (*Unit, error) {
	if !s.CanDo(authority.ActionManageUnits) {
		return nil, bizerror.ErrForbidden
	}

	u := Unit{ID: idgen.NextID(unitIdWorker), Name: c.Name, Code: c.Code, Type: c.Type,
		SuperiorID: c.SuperiorID, CreateTime: types.CurrentTimestamp()}

	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if !c.SuperiorID.IsZero() {
			var superior Unit
			if err := tx.Where(&Unit{ID: c.SuperiorID}).First(&superior).Error; err != nil {
				return err
			}
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func UpdateUnit(id types.ID, c *UnitUpdating, s *session.Session) error {
	if !s.CanDo(authority.ActionManageUnits) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var u Unit
		if err := tx.Where(&Unit{ID: id}).First(&u).Error; err != nil {
			return err
		}

		if !c.SuperiorID.IsZero() {
			if err := checkSuperiorChain(id, c.SuperiorID, tx); err != nil {
				return err
			}
		}

		cols := map[string]interface{}{
			"name": c.Name, "code": c.Code, "type": c.Type, "superior_id": c.SuperiorID,
		}
		return tx.Model(&Unit{}).Where(&Unit{ID: id}).Update(cols).Error
	})
}

// checkSuperiorChain walks up from the proposed superior, rejecting when the
// chain reaches the unit itself
func checkSuperiorChain(id, superiorID types.ID, tx *gorm.DB) error {
	cursor := superiorID
	for !cursor.IsZero() {
		if cursor == id {
			return bizerror.ErrUnitCycle
		}
		var parent Unit
		if err := tx.Select("id, superior_id").Where(&Unit{ID: cursor}).First(&parent).Error; err != nil {
			return err
		}
		cursor = parent.SuperiorID
	}
	return nil
}

func DeleteUnit(id types.ID, s *session.Session) error {
	if !s.CanDo(authority.ActionManageUnits) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var u Unit
		if err := tx.Where(&Unit{ID: id}).First(&u).Error; err != nil {
			return err
		}

		var subordinate Unit
		err := tx.Where(&Unit{SuperiorID: id}).First(&subordinate).Error
		if err == nil {
			return bizerror.ErrUnitReferenced
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		for _, f := range DeleteCheckFuncs {
			if err := f(u, tx); err != nil {
				return err
			}
		}

		return tx.Delete(Unit{}, "id = ?", id).Error
	})
}

func QueryUnits(s *session.Session) ([]Unit, error) {
	units := []Unit{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Order("name ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// SubtreeIDs collects the unit and every transitive subordinate, the traversal
// used by unit workload and commander visibility scoping
func SubtreeIDs(id types.ID, tx *gorm.DB) ([]types.ID, error) {
	result := []types.ID{id}
	frontier := []types.ID{id}
	for len(frontier) > 0 {
		var children []Unit
		if err := tx.Select("id").Where("superior_id IN (?)", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = nil
		for _, c := range children {
			result = append(result, c.ID)
			frontier = append(frontier, c.ID)
		}
	}
	return result, nil
}
