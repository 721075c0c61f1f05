package mission

import (
	"errors"
	"net/http"
	"sigem/bizerror"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathWorkload = "/v1/workload"

func RegisterWorkloadRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkload, middleWares...)
	g.GET("officers/:id", handleOfficerWorkload)
	g.GET("units/:id", handleUnitWorkload)
}

func parseWorkloadSubjectId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleOfficerWorkload(c *gin.Context) {
	w, err := OfficerWorkloadFunc(parseWorkloadSubjectId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, w)
}

func handleUnitWorkload(c *gin.Context) {
	w, err := UnitWorkloadFunc(parseWorkloadSubjectId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, w)
}
