package reports

import (
	"errors"
	"net/http"

	"sigem/bizerror"
	"sigem/domain/officer"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/xuri/excelize/v2"
)

var PathReports = "/v1/reports"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterReportsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathReports, middleWares...)
	g.GET("officers", handleExportOfficersRoster)
	g.GET("missions/:id/assignments", handleExportMissionAssignments)
	g.GET("workload", handleExportWorkload)
	g.POST("officer-imports", handleImportOfficers)
}

func respondWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		panic(err)
	}
}

func handleExportOfficersRoster(c *gin.Context) {
	query := officer.OfficerQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	f, err := ExportOfficersRosterFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	respondWorkbook(c, f, "officers.xlsx")
}

func handleExportMissionAssignments(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	f, err := ExportMissionAssignmentsFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	respondWorkbook(c, f, "assignments.xlsx")
}

func handleExportWorkload(c *gin.Context) {
	f, err := ExportWorkloadFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	respondWorkbook(c, f, "workload.xlsx")
}

func handleImportOfficers(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	reader, err := file.Open()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer func() {
		_ = reader.Close()
	}()

	result, err := ImportOfficersFunc(reader, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
