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

var PathAssignments = "/v1/assignments"

func RegisterAssignmentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAssignments, middleWares...)
	g.GET("", handleQueryAssignments)
	g.POST("", handleCreateAssignment)
	g.DELETE(":id", handleDeleteAssignment)
}

func parseAssignmentId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleQueryAssignments(c *gin.Context) {
	query := AssignmentQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	assignments, err := QueryAssignmentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: assignments, Total: uint64(len(assignments))})
}

func handleCreateAssignment(c *gin.Context) {
	creation := AssignmentCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	a, err := CreateAssignmentFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, a)
}

func handleDeleteAssignment(c *gin.Context) {
	if err := DeleteAssignmentFunc(parseAssignmentId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
