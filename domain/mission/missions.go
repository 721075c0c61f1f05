package mission

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
	TypeOperational    = "OPERATIONAL"
	TypeAdministrative = "ADMINISTRATIVE"
	TypeTraining       = "TRAINING"
	TypeCorrectional   = "CORRECTIONAL"
	TypeCommission     = "COMMISSION"
	TypeSocialAction   = "SOCIAL_ACTION"
)

var MissionTypes = []string{TypeOperational, TypeAdministrative, TypeTraining, TypeCorrectional, TypeCommission, TypeSocialAction}

const (
	StatusPlanned    = "PLANNED"
	StatusInProgress = "IN_PROGRESS"
	StatusConcluded  = "CONCLUDED"
	StatusCancelled  = "CANCELLED"
)

var MissionStatuses = []string{StatusPlanned, StatusInProgress, StatusConcluded, StatusCancelled}

type Mission struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Type        string `json:"type"`
	Name        string `json:"name"`
	Year        int    `json:"year"`
	Description string `json:"description" sql:"type:TEXT"`
	Location    string `json:"location"`

	BeginDate types.Timestamp `json:"beginDate" sql:"type:DATETIME(6)"`
	// EndDate is zero while the mission is ongoing
	EndDate types.Timestamp `json:"endDate" sql:"type:DATETIME(6)"`

	Status      string `json:"status"`
	RefDocument string `json:"refDocument"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

type MissionCreation struct {
	Type        string `json:"type" binding:"required"`
	Name        string `json:"name" binding:"required,lte=200"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"omitempty,lte=200"`

	BeginDate types.Timestamp `json:"beginDate"`
	EndDate   types.Timestamp `json:"endDate"`

	Status      string `json:"status" binding:"required"`
	RefDocument string `json:"refDocument" binding:"required,lte=100"`
}

type MissionUpdating struct {
	Type        string `json:"type" binding:"required"`
	Name        string `json:"name" binding:"required,lte=200"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"omitempty,lte=200"`

	BeginDate types.Timestamp `json:"beginDate"`
	EndDate   types.Timestamp `json:"endDate"`

	Status      string `json:"status" binding:"required"`
	RefDocument string `json:"refDocument" binding:"required,lte=100"`
}

type MissionQuery struct {
	Name   string `json:"name" form:"name"`
	Type   string `json:"type" form:"type"`
	Status string `json:"status" form:"status"`
	Year   int    `json:"year" form:"year"`
}

var (
	missionIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateMissionFunc = CreateMission
	UpdateMissionFunc = UpdateMission
	DeleteMissionFunc = DeleteMission
	QueryMissionsFunc = QueryMissions
	DetailMissionFunc = DetailMission
)

// CheckStatus is the single place enforcing mission status invariants: the
// status must be known and a concluded mission must carry an end date.
func CheckStatus(status string, endDate types.Timestamp) error {
	known := false
	for _, v := range MissionStatuses {
		if v == status {
			known = true
			break
		}
	}
	if !known {
		return bizerror.ErrMissionUnknownStatus
	}
	if status == StatusConcluded && endDate.Time().IsZero() {
		return bizerror.ErrMissionEndDateMissing
	}
	return nil
}

func CreateMission(c *MissionCreation, s *session.Session) (*Mission, error) {
	if !s.CanDo(authority.ActionManageMissions) {
		return nil, bizerror.ErrForbidden
	}
	if err := CheckStatus(c.Status, c.EndDate); err != nil {
		return nil, err
	}

	return CreateMissionInTx(c, persistence.ActiveDataSourceManager.GormDB(s.Context))
}

// CreateMissionInTx is shared with the approval workflow which materializes
// missions inside its own transaction. CheckStatus must already have passed.
func CreateMissionInTx(c *MissionCreation, tx *gorm.DB) (*Mission, error) {
	now := types.CurrentTimestamp()
	m := Mission{ID: idgen.NextID(missionIdWorker),
		Type: c.Type, Name: c.Name, Year: c.Year, Description: c.Description, Location: c.Location,
		BeginDate: c.BeginDate, EndDate: c.EndDate,
		Status: c.Status, RefDocument: c.RefDocument,
		CreateTime: now, UpdateTime: now}

	if err := tx.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func UpdateMission(id types.ID, c *MissionUpdating, s *session.Session) error {
	if !s.CanDo(authority.ActionManageMissions) {
		return bizerror.ErrForbidden
	}
	if err := CheckStatus(c.Status, c.EndDate); err != nil {
		return err
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var m Mission
		if err := tx.Where(&Mission{ID: id}).First(&m).Error; err != nil {
			return err
		}
		cols := map[string]interface{}{
			"type": c.Type, "name": c.Name, "year": c.Year,
			"description": c.Description, "location": c.Location,
			"begin_date": c.BeginDate, "end_date": c.EndDate,
			"status": c.Status, "ref_document": c.RefDocument,
			"update_time": types.CurrentTimestamp(),
		}
		return tx.Model(&Mission{}).Where(&Mission{ID: id}).Update(cols).Error
	})
}

func DeleteMission(id types.ID, s *session.Session) error {
	if !s.CanDo(authority.ActionManageMissions) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var m Mission
		if err := tx.Where(&Mission{ID: id}).First(&m).Error; err != nil {
			return err
		}

		var f Function
		err := tx.Where(&Function{MissionID: id}).First(&f).Error
		if err == nil {
			return bizerror.ErrFunctionReferenced
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Delete(Mission{}, "id = ?", id).Error
	})
}

func QueryMissions(q *MissionQuery, s *session.Session) ([]Mission, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Model(&Mission{})
	if q.Name != "" {
		query = query.Where("name LIKE ? OR ref_document LIKE ?", "%"+q.Name+"%", "%"+q.Name+"%")
	}
	if q.Type != "" {
		query = query.Where(&Mission{Type: q.Type})
	}
	if q.Status != "" {
		query = query.Where(&Mission{Status: q.Status})
	}
	if q.Year != 0 {
		query = query.Where(&Mission{Year: q.Year})
	}

	missions := []Mission{}
	if err := query.Order("begin_date DESC, name ASC").Find(&missions).Error; err != nil {
		return nil, err
	}
	return missions, nil
}

func DetailMission(id types.ID, s *session.Session) (*Mission, error) {
	var m Mission
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&Mission{ID: id}).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
