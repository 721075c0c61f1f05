package officer

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

var PathOfficers = "/v1/officers"

func RegisterOfficersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOfficers, middleWares...)
	g.GET("", handleQueryOfficers)
	g.POST("", handleCreateOfficer)
	g.GET(":id", handleDetailOfficer)
	g.PUT(":id", handleUpdateOfficer)
	g.DELETE(":id", handleDeactivateOfficer)
	g.POST(":id/active", handleReactivateOfficer)
	g.GET(":id/photo", handleDetailPhoto)
	g.PUT(":id/photo", handleCreatePhoto)
}

func parseOfficerId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleQueryOfficers(c *gin.Context) {
	query := OfficerQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	officers, err := QueryOfficersFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: officers, Total: uint64(len(officers))})
}

func handleCreateOfficer(c *gin.Context) {
	creation := OfficerCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	o, err := CreateOfficerFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, o)
}

func handleDetailOfficer(c *gin.Context) {
	o, err := DetailOfficerFunc(parseOfficerId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, o)
}

func handleUpdateOfficer(c *gin.Context) {
	updating := OfficerUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateOfficerFunc(parseOfficerId(c), &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleDeactivateOfficer(c *gin.Context) {
	if err := DeactivateOfficerFunc(parseOfficerId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleReactivateOfficer(c *gin.Context) {
	if err := ReactivateOfficerFunc(parseOfficerId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleDetailPhoto(c *gin.Context) {
	data, err := DetailPhoto(parseOfficerId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "image/png", data)
}

func handleCreatePhoto(c *gin.Context) {
	if err := CreatePhoto(parseOfficerId(c), c.Request.Body, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
