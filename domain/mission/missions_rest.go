package mission

import (
	"errors"
	"net/http"
	"sigem/bizerror"
	"sigem/misc"
	"sigem/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathMissions = "/v1/missions"

func RegisterMissionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathMissions, middleWares...)
	g.GET("", handleQueryMissions)
	g.POST("", handleCreateMission)
	g.GET(":id", handleDetailMission)
	g.PUT(":id", handleUpdateMission)
	g.DELETE(":id", handleDeleteMission)
}

func parseMissionId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleQueryMissions(c *gin.Context) {
	query := MissionQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	missions, err := QueryMissionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: missions, Total: uint64(len(missions))})
}

func handleCreateMission(c *gin.Context) {
	creation := MissionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	m, err := CreateMissionFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, m)
}

func handleDetailMission(c *gin.Context) {
	m, err := DetailMissionFunc(parseMissionId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, m)
}

func handleUpdateMission(c *gin.Context) {
	updating := MissionUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateMissionFunc(parseMissionId(c), &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleDeleteMission(c *gin.Context) {
	if err := DeleteMissionFunc(parseMissionId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
