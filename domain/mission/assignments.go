package mission

import (
	"errors"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/event"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	AssignmentStatusPending  = "PENDING"
	AssignmentStatusApproved = "APPROVED"
	AssignmentStatusRejected = "REJECTED"
)

// Assignment binds one officer to one function of one mission. An officer may
// hold several different functions in the same mission, never the same one
// twice.
type Assignment struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	MissionID  types.ID `json:"missionId" gorm:"unique_index:uni_mission_officer_function"`
	OfficerID  types.ID `json:"officerId" gorm:"unique_index:uni_mission_officer_function"`
	FunctionID types.ID `json:"functionId" gorm:"unique_index:uni_mission_officer_function"`

	Notes  string `json:"notes" sql:"type:TEXT"`
	Status string `json:"status"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

type AssignmentCreation struct {
	MissionID  types.ID `json:"missionId" binding:"required"`
	OfficerID  types.ID `json:"officerId" binding:"required"`
	FunctionID types.ID `json:"functionId" binding:"required"`
	Notes      string   `json:"notes"`
}

type AssignmentQuery struct {
	MissionID types.ID `json:"missionId" form:"missionId"`
	OfficerID types.ID `json:"officerId" form:"officerId"`
}

var (
	assignmentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateAssignmentFunc = CreateAssignment
	DeleteAssignmentFunc = DeleteAssignment
	QueryAssignmentsFunc = QueryAssignments
)

func CreateAssignment(c *AssignmentCreation, s *session.Session) (*Assignment, error) {
	if !s.CanDo(authority.ActionManageAssignments) {
		return nil, bizerror.ErrForbidden
	}

	var a *Assignment
	var ev *event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var err error
		a, err = CreateAssignmentInTx(c, tx)
		if err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeAssignment, a.ID, "assignment of officer "+c.OfficerID.String(),
			event.EventCategoryCreated, nil, &s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return a, nil
}

// CreateAssignmentInTx enforces the uniqueness triple and the
// function-belongs-to-mission constraint; shared with the approval workflow.
// Lookups use explicit conditions: gorm drops zero-value struct fields, so a
// struct query with an omitted id would match an arbitrary row.
func CreateAssignmentInTx(c *AssignmentCreation, tx *gorm.DB) (*Assignment, error) {
	if c.MissionID.IsZero() || c.OfficerID.IsZero() || c.FunctionID.IsZero() {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("missionId, officerId and functionId are required")}
	}

	var f Function
	if err := tx.Where("id = ?", c.FunctionID).First(&f).Error; err != nil {
		return nil, err
	}
	if f.MissionID != c.MissionID {
		return nil, bizerror.ErrFunctionMismatch
	}

	var existing Assignment
	err := tx.Where("mission_id = ? AND officer_id = ? AND function_id = ?",
		c.MissionID, c.OfficerID, c.FunctionID).First(&existing).Error
	if err == nil {
		return nil, bizerror.ErrAssignmentExisted
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := types.CurrentTimestamp()
	a := Assignment{ID: idgen.NextID(assignmentIdWorker),
		MissionID: c.MissionID, OfficerID: c.OfficerID, FunctionID: c.FunctionID,
		Notes: c.Notes, Status: AssignmentStatusApproved,
		CreateTime: now, UpdateTime: now}
	if err := tx.Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func DeleteAssignment(id types.ID, s *session.Session) error {
	if !s.CanDo(authority.ActionManageAssignments) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var a Assignment
		if err := tx.Where(&Assignment{ID: id}).First(&a).Error; err != nil {
			return err
		}
		return tx.Delete(Assignment{}, "id = ?", id).Error
	})
}

func QueryAssignments(q *AssignmentQuery, s *session.Session) ([]Assignment, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Model(&Assignment{})
	if !q.MissionID.IsZero() {
		query = query.Where(&Assignment{MissionID: q.MissionID})
	}
	if !q.OfficerID.IsZero() {
		query = query.Where(&Assignment{OfficerID: q.OfficerID})
	}

	assignments := []Assignment{}
	if err := query.Order("create_time DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
