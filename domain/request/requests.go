package request

import (
	"errors"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/mission"
	"sigem/event"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	KindNewMission  = "NEW_MISSION"
	KindDesignation = "DESIGNATION"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Request is the unified workflow entity. A NEW_MISSION request carries the
// full mission payload plus one function name; a DESIGNATION request points at
// an existing mission and function. PENDING is the only state that accepts
// transitions, APPROVED and REJECTED are terminal.
type Request struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Kind string   `json:"kind"`

	RequesterID        types.ID `json:"requesterId"`
	RequesterName      string   `json:"requesterName"`
	RequesterOfficerID types.ID `json:"requesterOfficerId"`

	// NEW_MISSION payload, empty for DESIGNATION
	MissionType        string          `json:"missionType"`
	MissionName        string          `json:"missionName"`
	MissionYear        int             `json:"missionYear"`
	MissionDescription string          `json:"missionDescription" sql:"type:TEXT"`
	MissionLocation    string          `json:"missionLocation"`
	MissionBeginDate   types.Timestamp `json:"missionBeginDate" sql:"type:DATETIME(6)"`
	MissionEndDate     types.Timestamp `json:"missionEndDate" sql:"type:DATETIME(6)"`
	MissionStatus      string          `json:"missionStatus"`
	MissionRefDocument string          `json:"missionRefDocument"`
	FunctionName       string          `json:"functionName"`

	// DESIGNATION payload, zero for NEW_MISSION
	MissionID  types.ID `json:"missionId"`
	FunctionID types.ID `json:"functionId"`

	AssignmentRefDocument string `json:"assignmentRefDocument"`

	// complexity ratings supplied by the evaluator at approval, zero until then
	Tde int `json:"tde"`
	Nqt int `json:"nqt"`
	Grs int `json:"grs"`
	Dec int `json:"dec"`

	Status        string          `json:"status"`
	EvaluatorID   types.ID        `json:"evaluatorId"`
	EvaluatorName string          `json:"evaluatorName"`
	EvaluateTime  types.Timestamp `json:"evaluateTime" sql:"type:DATETIME(6)"`
	Rationale     string          `json:"rationale" sql:"type:TEXT"`

	// result slots, write-once by the approval transaction
	CreatedMissionID    types.ID `json:"createdMissionId"`
	CreatedFunctionID   types.ID `json:"createdFunctionId"`
	CreatedAssignmentID types.ID `json:"createdAssignmentId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type RequestCreation struct {
	Kind string `json:"kind" binding:"required,oneof=NEW_MISSION DESIGNATION"`

	MissionType        string          `json:"missionType"`
	MissionName        string          `json:"missionName" binding:"omitempty,lte=200"`
	MissionYear        int             `json:"missionYear"`
	MissionDescription string          `json:"missionDescription"`
	MissionLocation    string          `json:"missionLocation" binding:"omitempty,lte=200"`
	MissionBeginDate   types.Timestamp `json:"missionBeginDate"`
	MissionEndDate     types.Timestamp `json:"missionEndDate"`
	MissionStatus      string          `json:"missionStatus"`
	MissionRefDocument string          `json:"missionRefDocument" binding:"omitempty,lte=100"`
	FunctionName       string          `json:"functionName" binding:"omitempty,lte=100"`

	MissionID  types.ID `json:"missionId"`
	FunctionID types.ID `json:"functionId"`

	AssignmentRefDocument string `json:"assignmentRefDocument" binding:"required,lte=100"`
}

type RequestEvaluation struct {
	Ratings   *complexity.Ratings `json:"ratings"`
	Rationale string              `json:"rationale"`
}

type PendingRequestQuery struct {
	Kind          string          `json:"kind" form:"kind"`
	RequesterID   types.ID        `json:"requesterId" form:"requesterId"`
	CreatedBefore types.Timestamp `json:"createdBefore" form:"createdBefore"`
}

var (
	requestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SubmitRequestFunc        = SubmitRequest
	ApproveRequestFunc       = ApproveRequest
	RejectRequestFunc        = RejectRequest
	QueryPendingRequestsFunc = QueryPendingRequests
	QueryMyRequestsFunc      = QueryMyRequests
	DetailRequestFunc        = DetailRequest
)

// SubmitRequest files a PENDING request on behalf of the caller's linked
// officer. Validation is per kind: a NEW_MISSION request must carry the whole
// mission payload, a DESIGNATION request must point at a function of an
// existing mission the requester does not already hold and has not already
// asked for.
func SubmitRequest(c *RequestCreation, s *session.Session) (*Request, error) {
	if s.Identity.OfficerID.IsZero() {
		return nil, bizerror.ErrOfficerNotLinked
	}

	if c.Kind == KindNewMission {
		if err := validateNewMissionPayload(c); err != nil {
			return nil, err
		}
	}

	var r *Request
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if c.Kind == KindDesignation {
			if err := validateDesignationPayload(c, s, tx); err != nil {
				return err
			}
		}

		r = &Request{ID: idgen.NextID(requestIdWorker), Kind: c.Kind,
			RequesterID: s.Identity.ID, RequesterName: s.Identity.Name, RequesterOfficerID: s.Identity.OfficerID,
			MissionType: c.MissionType, MissionName: c.MissionName, MissionYear: c.MissionYear,
			MissionDescription: c.MissionDescription, MissionLocation: c.MissionLocation,
			MissionBeginDate: c.MissionBeginDate, MissionEndDate: c.MissionEndDate,
			MissionStatus: c.MissionStatus, MissionRefDocument: c.MissionRefDocument,
			FunctionName: c.FunctionName,
			MissionID:    c.MissionID, FunctionID: c.FunctionID,
			AssignmentRefDocument: c.AssignmentRefDocument,
			Status:                StatusPending, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeRequest, r.ID, requestDesc(r),
			event.EventCategoryCreated, nil, &s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return r, nil
}

func validateNewMissionPayload(c *RequestCreation) error {
	if c.MissionName == "" || c.MissionType == "" || c.MissionLocation == "" ||
		c.MissionBeginDate.Time().IsZero() || c.MissionRefDocument == "" || c.FunctionName == "" {
		return &bizerror.ErrBadParam{Cause: errors.New("incomplete mission payload")}
	}
	if c.MissionStatus == "" {
		c.MissionStatus = mission.StatusPlanned
	}
	return mission.CheckStatus(c.MissionStatus, c.MissionEndDate)
}

// validateDesignationPayload looks up the referenced entities with explicit
// conditions: gorm drops zero-value struct fields, so an omitted id in a
// struct query would match an arbitrary row instead of failing.
func validateDesignationPayload(c *RequestCreation, s *session.Session, tx *gorm.DB) error {
	if c.MissionID.IsZero() || c.FunctionID.IsZero() {
		return &bizerror.ErrBadParam{Cause: errors.New("missionId and functionId are required")}
	}

	var f mission.Function
	if err := tx.Where("id = ?", c.FunctionID).First(&f).Error; err != nil {
		return err
	}
	if f.MissionID != c.MissionID {
		return bizerror.ErrFunctionMismatch
	}
	var m mission.Mission
	if err := tx.Where("id = ?", c.MissionID).First(&m).Error; err != nil {
		return err
	}

	var pending Request
	err := tx.Where(&Request{RequesterID: s.Identity.ID, MissionID: c.MissionID,
		FunctionID: c.FunctionID, Status: StatusPending}).First(&pending).Error
	if err == nil {
		return bizerror.ErrRequestPendingExisted
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	var a mission.Assignment
	err = tx.Where(&mission.Assignment{MissionID: c.MissionID, OfficerID: s.Identity.OfficerID,
		FunctionID: c.FunctionID}).First(&a).Error
	if err == nil {
		return bizerror.ErrAlreadyAssigned
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

// ApproveRequest settles a PENDING request and materializes its entities in
// one transaction. The status row is claimed first with a conditional update
// so a concurrent evaluation of the same request observes ErrAlreadyEvaluated,
// and any creation failure rolls the claim back, leaving the request PENDING
// with nothing created.
func ApproveRequest(id types.ID, e *RequestEvaluation, s *session.Session) (*Request, error) {
	if !s.CanDo(authority.ActionEvaluateRequests) {
		return nil, bizerror.ErrForbidden
	}

	var r Request
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&r).Error; err != nil {
			return err
		}
		if r.Kind == KindNewMission {
			if e.Ratings == nil {
				return bizerror.ErrInvalidRating
			}
			if err := e.Ratings.Validate(); err != nil {
				return err
			}
		}

		cols := map[string]interface{}{
			"status": StatusApproved, "evaluator_id": s.Identity.ID, "evaluator_name": s.Identity.Name,
			"evaluate_time": types.CurrentTimestamp(), "rationale": e.Rationale,
		}
		if r.Kind == KindNewMission {
			cols["tde"] = e.Ratings.Tde
			cols["nqt"] = e.Ratings.Nqt
			cols["grs"] = e.Ratings.Grs
			cols["dec"] = e.Ratings.Dec
		}
		claim := tx.Model(&Request{}).Where("id = ? AND status = ?", id, StatusPending).Update(cols)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return bizerror.ErrAlreadyEvaluated
		}

		missionId, functionId := r.MissionID, r.FunctionID
		results := map[string]interface{}{}
		if r.Kind == KindNewMission {
			m, err := mission.CreateMissionInTx(&mission.MissionCreation{
				Type: r.MissionType, Name: r.MissionName, Year: r.MissionYear,
				Description: r.MissionDescription, Location: r.MissionLocation,
				BeginDate: r.MissionBeginDate, EndDate: r.MissionEndDate,
				Status: r.MissionStatus, RefDocument: r.MissionRefDocument}, tx)
			if err != nil {
				return err
			}
			f, err := mission.CreateFunctionInTx(&mission.FunctionCreation{
				MissionID: m.ID, Name: r.FunctionName, Ratings: *e.Ratings}, tx)
			if err != nil {
				return err
			}
			missionId, functionId = m.ID, f.ID
			results["created_mission_id"] = m.ID
			results["created_function_id"] = f.ID
		}

		a, err := mission.CreateAssignmentInTx(&mission.AssignmentCreation{
			MissionID: missionId, OfficerID: r.RequesterOfficerID, FunctionID: functionId,
			Notes: "Created via request. Ref: " + r.AssignmentRefDocument}, tx)
		if err != nil {
			return err
		}
		results["created_assignment_id"] = a.ID
		if err := tx.Model(&Request{}).Where(&Request{ID: id}).Update(results).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.SourceTypeRequest, id, requestDesc(&r),
			event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "status", OldValue: StatusPending, NewValue: StatusApproved}},
			&s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	if err := db.Where(&Request{ID: id}).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// RejectRequest settles a PENDING request without creating anything. The same
// conditional claim as ApproveRequest guards against double evaluation.
func RejectRequest(id types.ID, rationale string, s *session.Session) (*Request, error) {
	if !s.CanDo(authority.ActionEvaluateRequests) {
		return nil, bizerror.ErrForbidden
	}

	var r Request
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&r).Error; err != nil {
			return err
		}

		cols := map[string]interface{}{
			"status": StatusRejected, "evaluator_id": s.Identity.ID, "evaluator_name": s.Identity.Name,
			"evaluate_time": types.CurrentTimestamp(), "rationale": rationale,
		}
		claim := tx.Model(&Request{}).Where("id = ? AND status = ?", id, StatusPending).Update(cols)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return bizerror.ErrAlreadyEvaluated
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeRequest, id, requestDesc(&r),
			event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "status", OldValue: StatusPending, NewValue: StatusRejected}},
			&s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	if err := db.Where(&Request{ID: id}).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// QueryPendingRequests lists the evaluation queue oldest first.
func QueryPendingRequests(q *PendingRequestQuery, s *session.Session) ([]Request, error) {
	if !s.CanDo(authority.ActionEvaluateRequests) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Model(&Request{}).Where(&Request{Status: StatusPending})
	if q.Kind != "" {
		query = query.Where(&Request{Kind: q.Kind})
	}
	if !q.RequesterID.IsZero() {
		query = query.Where(&Request{RequesterID: q.RequesterID})
	}
	if !q.CreatedBefore.Time().IsZero() {
		query = query.Where("create_time < ?", q.CreatedBefore)
	}

	requests := []Request{}
	if err := query.Order("create_time ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// QueryMyRequests lists the caller's own requests, most recent first.
func QueryMyRequests(s *session.Session) ([]Request, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	requests := []Request{}
	if err := db.Model(&Request{}).Where(&Request{RequesterID: s.Identity.ID}).
		Order("create_time DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func DetailRequest(id types.ID, s *session.Session) (*Request, error) {
	var r Request
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&Request{ID: id}).First(&r).Error; err != nil {
		return nil, err
	}
	if r.RequesterID != s.Identity.ID && !s.CanDo(authority.ActionEvaluateRequests) {
		return nil, bizerror.ErrForbidden
	}
	return &r, nil
}

func requestDesc(r *Request) string {
	if r.Kind == KindNewMission {
		return "request for new mission " + r.MissionName
	}
	return "designation request for mission " + r.MissionID.String()
}
