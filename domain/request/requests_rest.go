package request

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

var PathRequests = "/v1/requests"

func RegisterRequestsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRequests, middleWares...)
	g.GET("", handleQueryPendingRequests)
	g.GET("mine", handleQueryMyRequests)
	g.POST("", handleSubmitRequest)
	g.GET(":id", handleDetailRequest)
	g.POST(":id/approval", handleApproveRequest)
	g.POST(":id/rejection", handleRejectRequest)
}

type requestRejectionBody struct {
	Rationale string `json:"rationale"`
}

func parseRequestId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleQueryPendingRequests(c *gin.Context) {
	query := PendingRequestQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	requests, err := QueryPendingRequestsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: requests, Total: uint64(len(requests))})
}

func handleQueryMyRequests(c *gin.Context) {
	requests, err := QueryMyRequestsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: requests, Total: uint64(len(requests))})
}

func handleSubmitRequest(c *gin.Context) {
	creation := RequestCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := SubmitRequestFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, r)
}

func handleDetailRequest(c *gin.Context) {
	r, err := DetailRequestFunc(parseRequestId(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleApproveRequest(c *gin.Context) {
	evaluation := RequestEvaluation{}
	if err := c.ShouldBindBodyWith(&evaluation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := ApproveRequestFunc(parseRequestId(c), &evaluation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleRejectRequest(c *gin.Context) {
	body := requestRejectionBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := RejectRequestFunc(parseRequestId(c), body.Rationale, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}
