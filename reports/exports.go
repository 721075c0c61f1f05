package reports

import (
	"sort"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/mission"
	"sigem/domain/officer"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/xuri/excelize/v2"
)

var (
	ExportOfficersRosterFunc     = ExportOfficersRoster
	ExportMissionAssignmentsFunc = ExportMissionAssignments
	ExportWorkloadFunc           = ExportWorkload
)

func newSheet(f *excelize.File, name string, header []string) error {
	f.SetSheetName(f.GetSheetName(0), name)
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// ExportOfficersRoster renders the officers listing as a workbook. The same
// visibility scoping as the officers query applies.
func ExportOfficersRoster(q *officer.OfficerQuery, s *session.Session) (*excelize.File, error) {
	if !s.CanDo(authority.ActionExportReports) {
		return nil, bizerror.ErrForbidden
	}

	officers, err := officer.QueryOfficersFunc(q, s)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Officers"
	if err := newSheet(f, sheet, []string{"National ID", "Registry", "Name", "War Name", "Rank", "Corps", "Email", "Phone", "Active"}); err != nil {
		return nil, err
	}
	for i, o := range officers {
		values := []interface{}{o.NationalID, o.Registry, o.Name, o.WarName, o.Rank, o.Corps, o.Email, o.Phone, o.Active}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type assignmentRow struct {
	MissionName  string `gorm:"column:mission_name"`
	FunctionName string `gorm:"column:function_name"`
	OfficerName  string `gorm:"column:officer_name"`
	Registry     string `gorm:"column:registry"`
	Notes        string `gorm:"column:notes"`

	Tde int `gorm:"column:tde"`
	Nqt int `gorm:"column:nqt"`
	Grs int `gorm:"column:grs"`
	Dec int `gorm:"column:dec"`
}

// ExportMissionAssignments renders one mission's assignments with the derived
// complexity tier per function.
func ExportMissionAssignments(missionId types.ID, s *session.Session) (*excelize.File, error) {
	if !s.CanDo(authority.ActionExportReports) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if _, err := mission.DetailMissionFunc(missionId, s); err != nil {
		return nil, err
	}

	rows := []assignmentRow{}
	if err := db.Table("assignments").
		Select("missions.name AS mission_name, functions.name AS function_name, officers.name AS officer_name, " +
			"officers.registry AS registry, assignments.notes AS notes, " +
			"functions.tde AS tde, functions.nqt AS nqt, functions.grs AS grs, functions.dec AS `dec`").
		Joins("INNER JOIN missions ON missions.id = assignments.mission_id").
		Joins("INNER JOIN functions ON functions.id = assignments.function_id").
		Joins("INNER JOIN officers ON officers.id = assignments.officer_id").
		Where("assignments.mission_id = ?", missionId).
		Order("functions.name ASC, officers.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Assignments"
	if err := newSheet(f, sheet, []string{"Mission", "Function", "Complexity", "Officer", "Registry", "Notes"}); err != nil {
		return nil, err
	}
	for i, r := range rows {
		tier := complexity.TierOf(complexity.Ratings{Tde: r.Tde, Nqt: r.Nqt, Grs: r.Grs, Dec: r.Dec})
		values := []interface{}{r.MissionName, r.FunctionName, string(tier), r.OfficerName, r.Registry, r.Notes}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type workloadRow struct {
	OfficerId   types.ID `gorm:"column:officer_id"`
	OfficerName string   `gorm:"column:officer_name"`
	Registry    string   `gorm:"column:registry"`

	Tde int `gorm:"column:tde"`
	Nqt int `gorm:"column:nqt"`
	Grs int `gorm:"column:grs"`
	Dec int `gorm:"column:dec"`
}

// ExportWorkload renders the weighted workload of every officer holding an
// assignment on an ongoing mission, heaviest load first.
func ExportWorkload(s *session.Session) (*excelize.File, error) {
	if !s.CanDo(authority.ActionExportReports) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	rows := []workloadRow{}
	if err := db.Table("assignments").
		Select("officers.id AS officer_id, officers.name AS officer_name, officers.registry AS registry, " +
			"functions.tde AS tde, functions.nqt AS nqt, functions.grs AS grs, functions.dec AS `dec`").
		Joins("INNER JOIN functions ON functions.id = assignments.function_id").
		Joins("INNER JOIN missions ON missions.id = assignments.mission_id").
		Joins("INNER JOIN officers ON officers.id = assignments.officer_id").
		Where("missions.status = ?", mission.StatusInProgress).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	type entry struct {
		name     string
		registry string
		workload mission.Workload
	}
	byOfficer := map[types.ID]*entry{}
	order := []types.ID{}
	for _, r := range rows {
		e, found := byOfficer[r.OfficerId]
		if !found {
			e = &entry{name: r.OfficerName, registry: r.Registry}
			byOfficer[r.OfficerId] = e
			order = append(order, r.OfficerId)
		}
		tier := complexity.TierOf(complexity.Ratings{Tde: r.Tde, Nqt: r.Nqt, Grs: r.Grs, Dec: r.Dec})
		switch tier {
		case complexity.TierLow:
			e.workload.Low++
		case complexity.TierMedium:
			e.workload.Medium++
		case complexity.TierHigh:
			e.workload.High++
		}
		e.workload.WeightedTotal += tier.Weight()
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byOfficer[order[i]].workload.WeightedTotal > byOfficer[order[j]].workload.WeightedTotal
	})

	f := excelize.NewFile()
	sheet := "Workload"
	if err := newSheet(f, sheet, []string{"Officer", "Registry", "Low", "Medium", "High", "Weighted Total"}); err != nil {
		return nil, err
	}
	for i, id := range order {
		e := byOfficer[id]
		values := []interface{}{e.name, e.registry, e.workload.Low, e.workload.Medium, e.workload.High, e.workload.WeightedTotal}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}
