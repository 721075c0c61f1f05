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

var PathFunctions = "/v1/functions"

func RegisterFunctionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathFunctions, middleWares...)
	g.GET("", handleListFunctions)
	g.POST("", handleCreateFunction)
	g.PUT(":id", handleUpdateFunction)
	g.DELETE(":id", handleDeleteFunction)
}

func parseFunctionId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleListFunctions(c *gin.Context) {
	query := FunctionQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	functions, err := ListFunctionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: functions, Total: uint64(len(functions))})
}

func handleCreateFunction(c *gin.Context) {
	creation := FunctionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	f, err := CreateFunctionFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, f)
}

func handleUpdateFunction(c *gin.Context) {
	updating := FunctionUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateFunctionFunc(parseFunctionId(c), &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleDeleteFunction(c *gin.Context) {
	if err := DeleteFunctionFunc(parseFunctionId(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
