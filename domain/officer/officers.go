package officer

import (
	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/unit"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	RankColonel    = "COLONEL"
	RankLtColonel  = "LT_COLONEL"
	RankMajor      = "MAJOR"
	RankCaptain    = "CAPTAIN"
	RankFirstLt    = "FIRST_LT"
	RankSecondLt   = "SECOND_LT"
	RankAspirant   = "ASPIRANT"
)

var Ranks = []string{RankColonel, RankLtColonel, RankMajor, RankCaptain, RankFirstLt, RankSecondLt, RankAspirant}

const (
	CorpsCombatant = "COMBATANT"
	CorpsAdmin     = "ADMIN"
	CorpsMusician  = "MUSICIAN"
	CorpsMedical   = "MEDICAL"
	CorpsDental    = "DENTAL"
)

type Officer struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	NationalID string `json:"nationalId" gorm:"unique_index:uni_national_id"`
	Registry   string `json:"registry" gorm:"unique_index:uni_registry"`
	Name       string `json:"name"`
	WarName    string `json:"warName"`
	Rank       string `json:"rank" gorm:"column:officer_rank"`
	Corps      string `json:"corps"`

	// UnitID is the officer's home unit
	UnitID types.ID `json:"unitId"`

	Email string `json:"email"`
	Phone string `json:"phone"`

	Active bool `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

type OfficerCreation struct {
	NationalID string   `json:"nationalId" binding:"required,len=11"`
	Registry   string   `json:"registry" binding:"required,lte=20"`
	Name       string   `json:"name" binding:"required,lte=150"`
	WarName    string   `json:"warName" binding:"omitempty,lte=50"`
	Rank       string   `json:"rank" binding:"required"`
	Corps      string   `json:"corps" binding:"required"`
	UnitID     types.ID `json:"unitId"`
	Email      string   `json:"email" binding:"omitempty,email"`
	Phone      string   `json:"phone" binding:"omitempty,lte=20"`
}

type OfficerUpdating struct {
	Name    string   `json:"name" binding:"required,lte=150"`
	WarName string   `json:"warName" binding:"omitempty,lte=50"`
	Rank    string   `json:"rank" binding:"required"`
	Corps   string   `json:"corps" binding:"required"`
	UnitID  types.ID `json:"unitId"`
	Email   string   `json:"email" binding:"omitempty,email"`
	Phone   string   `json:"phone" binding:"omitempty,lte=20"`
}

type OfficerQuery struct {
	Name   string   `json:"name" form:"name"`
	Rank   string   `json:"rank" form:"rank"`
	UnitID types.ID `json:"unitId" form:"unitId"`

	// ActiveState: "" active only, "off" inactive only, "all" both
	ActiveState string `json:"activeState" form:"activeState"`
}

var (
	officerIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateOfficerFunc     = CreateOfficer
	UpdateOfficerFunc     = UpdateOfficer
	QueryOfficersFunc     = QueryOfficers
	DetailOfficerFunc     = DetailOfficer
	DeactivateOfficerFunc = DeactivateOfficer
	ReactivateOfficerFunc = ReactivateOfficer
)

func init() {
	unit.DeleteCheckFuncs = append(unit.DeleteCheckFuncs, IsUnitReferencedByOfficer)
}

func IsUnitReferencedByOfficer(u unit.Unit, tx *gorm.DB) error {
	var o Officer
	if err := tx.Where(&Officer{UnitID: u.ID}).First(&o).Error; err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		return err
	}
	return bizerror.ErrUnitReferenced
}

func CreateOfficer(c *OfficerCreation, s *session.Session) (*Officer, error) {
	if !s.CanDo(authority.ActionManageOfficers) {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	o := Officer{ID: idgen.NextID(officerIdWorker),
		NationalID: c.NationalID, Registry: c.Registry,
		Name: c.Name, WarName: c.WarName, Rank: c.Rank, Corps: c.Corps,
		UnitID: c.UnitID, Email: c.Email, Phone: c.Phone,
		Active: true, CreateTime: now, UpdateTime: now}

	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func UpdateOfficer(id types.ID, c *OfficerUpdating, s *session.Session) error {
	if !s.CanDo(authority.ActionManageOfficers) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var o Officer
		if err := tx.Where(&Officer{ID: id}).First(&o).Error; err != nil {
			return err
		}
		cols := map[string]interface{}{
			"name": c.Name, "war_name": c.WarName, "officer_rank": c.Rank, "corps": c.Corps,
			"unit_id": c.UnitID, "email": c.Email, "phone": c.Phone,
			"update_time": types.CurrentTimestamp(),
		}
		return tx.Model(&Officer{}).Where(&Officer{ID: id}).Update(cols).Error
	})
}

// DeactivateOfficer removes the officer from active service while keeping the
// record and its assignment history
func DeactivateOfficer(id types.ID, s *session.Session) error {
	return setOfficerActive(id, false, s)
}

func ReactivateOfficer(id types.ID, s *session.Session) error {
	return setOfficerActive(id, true, s)
}

func setOfficerActive(id types.ID, active bool, s *session.Session) error {
	if !s.CanDo(authority.ActionManageOfficers) {
		return bizerror.ErrForbidden
	}
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var o Officer
		if err := tx.Where(&Officer{ID: id}).First(&o).Error; err != nil {
			return err
		}
		return tx.Model(&Officer{}).Where(&Officer{ID: id}).
			Update(map[string]interface{}{"active": active, "update_time": types.CurrentTimestamp()}).Error
	})
}

func DetailOfficer(id types.ID, s *session.Session) (*Officer, error) {
	var o Officer
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&Officer{ID: id}).First(&o).Error; err != nil {
		return nil, err
	}

	if s.CanDo(authority.ActionViewAllOfficers) || s.Identity.OfficerID == id {
		return &o, nil
	}
	if s.CanDo(authority.ActionViewOfficers) {
		visible, err := visibleUnitIDs(s, db)
		if err != nil {
			return nil, err
		}
		for _, uid := range visible {
			if uid == o.UnitID {
				return &o, nil
			}
		}
	}
	return nil, bizerror.ErrForbidden
}

func QueryOfficers(q *OfficerQuery, s *session.Session) ([]Officer, error) {
	if !s.CanDo(authority.ActionViewOfficers) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Model(&Officer{})
	if q.Name != "" {
		query = query.Where("name LIKE ? OR war_name LIKE ?", "%"+q.Name+"%", "%"+q.Name+"%")
	}
	if q.Rank != "" {
		query = query.Where(&Officer{Rank: q.Rank})
	}
	if !q.UnitID.IsZero() {
		query = query.Where(&Officer{UnitID: q.UnitID})
	}
	if q.ActiveState == "off" {
		query = query.Where("active = ?", false)
	} else if q.ActiveState != "all" {
		query = query.Where("active = ?", true)
	}

	if !s.CanDo(authority.ActionViewAllOfficers) {
		visible, err := visibleUnitIDs(s, db)
		if err != nil {
			return nil, err
		}
		if len(visible) == 0 {
			return []Officer{}, nil
		}
		query = query.Where("unit_id IN (?)", visible)
	}

	officers := []Officer{}
	if err := query.Order("officer_rank ASC, name ASC").Find(&officers).Error; err != nil {
		return nil, err
	}
	return officers, nil
}

// visibleUnitIDs resolves a commander's unit subtree through the linked officer
func visibleUnitIDs(s *session.Session, tx *gorm.DB) ([]types.ID, error) {
	if s.Identity.OfficerID.IsZero() {
		return nil, nil
	}
	var self Officer
	if err := tx.Where(&Officer{ID: s.Identity.OfficerID}).First(&self).Error; err != nil {
		return nil, err
	}
	if self.UnitID.IsZero() {
		return nil, nil
	}
	return unit.SubtreeIDs(self.UnitID, tx)
}
