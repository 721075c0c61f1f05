package reports

import (
	"fmt"
	"io"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/officer"
	"sigem/domain/unit"
	"sigem/idgen"
	"sigem/persistence"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
	"github.com/xuri/excelize/v2"
)

var (
	importIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ImportOfficersFunc = ImportOfficers
)

type ImportResult struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ImportOfficers loads officer records from a workbook. This write path
// bypasses the request workflow and is gated by its own permission.
// Columns: national id, registry, name, war name, rank, corps,
// unit code, email, phone. Rows whose national id or registry already exists
// are skipped, malformed rows are reported and do not abort the rest.
func ImportOfficers(r io.Reader, s *session.Session) (*ImportResult, error) {
	if !s.CanDo(authority.ActionImportRecords) {
		return nil, bizerror.ErrForbidden
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &bizerror.ErrBadParam{Cause: err}
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, &bizerror.ErrBadParam{Cause: err}
	}

	result := ImportResult{Errors: []string{}}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	unitsByCode := map[string]types.ID{}
	units := []unit.Unit{}
	if err := db.Model(&unit.Unit{}).Find(&units).Error; err != nil {
		return nil, err
	}
	for _, u := range units {
		unitsByCode[u.Code] = u.ID
	}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		result.Total++

		cell := func(idx int) string {
			if idx < len(row) {
				return row[idx]
			}
			return ""
		}
		nationalId, registry, name := cell(0), cell(1), cell(2)
		warName, rank, corps := cell(3), cell(4), cell(5)
		unitCode, email, phone := cell(6), cell(7), cell(8)

		if nationalId == "" || registry == "" || name == "" || rank == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing required columns", i+1))
			continue
		}

		unitId := types.ID(0)
		if unitCode != "" {
			id, found := unitsByCode[unitCode]
			if !found {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown unit code '%s'", i+1, unitCode))
				continue
			}
			unitId = id
		}

		var existing officer.Officer
		err := db.Where("national_id = ? OR registry = ?", nationalId, registry).First(&existing).Error
		if err == nil {
			result.Skipped++
			continue
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		now := types.CurrentTimestamp()
		o := officer.Officer{ID: idgen.NextID(importIdWorker),
			NationalID: nationalId, Registry: registry, Name: name, WarName: warName,
			Rank: rank, Corps: corps, UnitID: unitId, Email: email, Phone: phone,
			Active: true, CreateTime: now, UpdateTime: now}
		if err := db.Create(&o).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", i+1, err.Error()))
			continue
		}
		result.Created++
	}
	return &result, nil
}
