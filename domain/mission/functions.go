package mission

import (
	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

// Function is a named role inside a mission. The complexity tier is always
// derived from the current ratings, never stored.
type Function struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	MissionID types.ID `json:"missionId" gorm:"unique_index:uni_mission_function"`
	Name      string   `json:"name" gorm:"unique_index:uni_mission_function"`

	Tde int `json:"tde"`
	Nqt int `json:"nqt"`
	Grs int `json:"grs"`
	Dec int `json:"dec"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (f Function) Ratings() complexity.Ratings {
	return complexity.Ratings{Tde: f.Tde, Nqt: f.Nqt, Grs: f.Grs, Dec: f.Dec}
}

func (f Function) Tier() complexity.Tier {
	return complexity.TierOf(f.Ratings())
}

// FunctionDetail extends Function with the derived tier for API responses
type FunctionDetail struct {
	Function
	ComplexityTier complexity.Tier `json:"complexityTier"`
}

type FunctionCreation struct {
	MissionID types.ID `json:"missionId" binding:"required"`
	Name      string   `json:"name" binding:"required,lte=100"`

	complexity.Ratings
}

type FunctionUpdating struct {
	Name string `json:"name" binding:"required,lte=100"`

	complexity.Ratings
}

type FunctionQuery struct {
	MissionID types.ID `json:"missionId" form:"missionId" binding:"required"`
}

var (
	functionIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateFunctionFunc = CreateFunction
	UpdateFunctionFunc = UpdateFunction
	DeleteFunctionFunc = DeleteFunction
	ListFunctionsFunc  = ListFunctions
)

func CreateFunction(c *FunctionCreation, s *session.Session) (*FunctionDetail, error) {
	if !s.CanDo(authority.ActionManageMissions) {
		return nil, bizerror.ErrForbidden
	}
	if err := c.Ratings.Validate(); err != nil {
		return nil, err
	}

	var detail *FunctionDetail
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		f, err := CreateFunctionInTx(c, tx)
		if err != nil {
			return err
		}
		detail = &FunctionDetail{Function: *f, ComplexityTier: f.Tier()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// CreateFunctionInTx is shared with the approval workflow which materializes
// functions inside its own transaction. Ratings must already be validated.
func CreateFunctionInTx(c *FunctionCreation, tx *gorm.DB) (*Function, error) {
	var m Mission
	if err := tx.Where(&Mission{ID: c.MissionID}).First(&m).Error; err != nil {
		return nil, err
	}

	var existing Function
	err := tx.Where(&Function{MissionID: c.MissionID, Name: c.Name}).First(&existing).Error
	if err == nil {
		return nil, bizerror.ErrFunctionExisted
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := types.CurrentTimestamp()
	f := Function{ID: idgen.NextID(functionIdWorker), MissionID: c.MissionID, Name: c.Name,
		Tde: c.Tde, Nqt: c.Nqt, Grs: c.Grs, Dec: c.Dec,
		CreateTime: now, UpdateTime: now}
	if err := tx.Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFunction changes name and ratings at any time; the tier of every
// assignment referencing the function follows the new ratings immediately.
func UpdateFunction(id types.ID, c *FunctionUpdating, s *session.Session) error {
	if !s.CanDo(authority.ActionManageMissions) {
		return bizerror.ErrForbidden
	}
	if err := c.Ratings.Validate(); err != nil {
		return err
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var f Function
		if err := tx.Where(&Function{ID: id}).First(&f).Error; err != nil {
			return err
		}

		if c.Name != f.Name {
			var existing Function
			err := tx.Where(&Function{MissionID: f.MissionID, Name: c.Name}).First(&existing).Error
			if err == nil {
				return bizerror.ErrFunctionExisted
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		cols := map[string]interface{}{
			"name": c.Name, "tde": c.Tde, "nqt": c.Nqt, "grs": c.Grs, "dec": c.Dec,
			"update_time": types.CurrentTimestamp(),
		}
		return tx.Model(&Function{}).Where(&Function{ID: id}).Update(cols).Error
	})
}

func DeleteFunction(id types.ID, s *session.Session) error {
	if !s.CanDo(authority.ActionManageMissions) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var f Function
		if err := tx.Where(&Function{ID: id}).First(&f).Error; err != nil {
			return err
		}

		var a Assignment
		err := tx.Where(&Assignment{FunctionID: id}).First(&a).Error
		if err == nil {
			return bizerror.ErrFunctionReferenced
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Delete(Function{}, "id = ?", id).Error
	})
}

// ListFunctions returns the functions of a mission ordered by mission name
// then function name
func ListFunctions(q *FunctionQuery, s *session.Session) ([]FunctionDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	functions := []Function{}
	if err := db.Model(&Function{}).
		Joins("INNER JOIN missions ON missions.id = functions.mission_id").
		Where("functions.mission_id = ?", q.MissionID).
		Order("missions.name ASC, functions.name ASC").
		Find(&functions).Error; err != nil {
		return nil, err
	}

	details := make([]FunctionDetail, 0, len(functions))
	for _, f := range functions {
		details = append(details, FunctionDetail{Function: f, ComplexityTier: f.Tier()})
	}
	return details, nil
}
