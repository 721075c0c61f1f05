package mission

import (
	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/officer"
	"sigem/domain/unit"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// Workload buckets an officer's (or unit's) in-progress assignments by the
// current complexity tier of each assignment's function.
type Workload struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`

	// WeightedTotal = low*1 + medium*2 + high*3
	WeightedTotal int `json:"weightedTotal"`
}

var (
	OfficerWorkloadFunc = OfficerWorkload
	UnitWorkloadFunc    = UnitWorkload
)

// OfficerWorkload aggregates over the officer's assignments whose mission is
// IN_PROGRESS. Tiers are computed from the functions' current ratings at read
// time, so rating edits show up in the very next call. An officer without
// assignments yields an all-zero workload.
func OfficerWorkload(officerID types.ID, s *session.Session) (*Workload, error) {
	if !s.CanDo(authority.ActionViewDashboard) && s.Identity.OfficerID != officerID {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return workloadOf(db.Where("assignments.officer_id = ?", officerID))
}

// UnitWorkload aggregates across every officer whose home unit falls in the
// unit's subtree.
func UnitWorkload(unitID types.ID, s *session.Session) (*Workload, error) {
	if !s.CanDo(authority.ActionViewDashboard) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	unitIDs, err := unit.SubtreeIDs(unitID, db)
	if err != nil {
		return nil, err
	}

	var officerIDs []types.ID
	if err := db.Model(&officer.Officer{}).Where("unit_id IN (?)", unitIDs).
		Pluck("id", &officerIDs).Error; err != nil {
		return nil, err
	}
	if len(officerIDs) == 0 {
		return &Workload{}, nil
	}

	return workloadOf(db.Where("assignments.officer_id IN (?)", officerIDs))
}

func workloadOf(query *gorm.DB) (*Workload, error) {
	var functions []Function
	if err := query.Table("assignments").
		Select("functions.tde, functions.nqt, functions.grs, functions.dec").
		Joins("INNER JOIN functions ON functions.id = assignments.function_id").
		Joins("INNER JOIN missions ON missions.id = assignments.mission_id").
		Where("missions.status = ?", StatusInProgress).
		Scan(&functions).Error; err != nil {
		return nil, err
	}

	w := Workload{}
	for _, f := range functions {
		switch f.Tier() {
		case complexity.TierLow:
			w.Low++
		case complexity.TierMedium:
			w.Medium++
		case complexity.TierHigh:
			w.High++
		}
	}
	w.WeightedTotal = w.Low*complexity.TierLow.Weight() +
		w.Medium*complexity.TierMedium.Weight() +
		w.High*complexity.TierHigh.Weight()
	return &w, nil
}
