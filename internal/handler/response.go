package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/validator"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RPCError is the body of a failed RPC-style call.
type RPCError struct {
	Error string `json:"error"`
}

// Fail writes err as an error response. Server errors are logged and their
// details withheld from the client.
func Fail(c *gin.Context, err error) {
	status, message := describe(c, err)
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}

// FailRPC is Fail for endpoints that answer {"error": "..."}.
func FailRPC(c *gin.Context, err error) {
	status, message := describe(c, err)
	c.AbortWithStatusJSON(status, RPCError{Error: message})
}

func describe(c *gin.Context, err error) (int, string) {
	appErr := apperrors.As(err)
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		return status, "internal server error"
	}
	return status, appErr.Message
}

var bindingOnce sync.Once

// useJSONNames makes gin's validator report fields by their JSON names so
// binding errors match the body the client sent.
func useJSONNames() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
			v.RegisterTagNameFunc(validator.JSONName)
		}
	})
}

// BindJSON decodes the body into obj, turning binding failures into a 400.
func BindJSON(c *gin.Context, obj interface{}) error {
	useJSONNames()
	if err := c.ShouldBindJSON(obj); err != nil {
		return BadBinding(err)
	}
	return nil
}

// BindQuery is BindJSON for query strings.
func BindQuery(c *gin.Context, obj interface{}) error {
	useJSONNames()
	if err := c.ShouldBindQuery(obj); err != nil {
		return BadBinding(err)
	}
	return nil
}

func BadBinding(err error) error {
	var verrs validator.Errors
	if errors.As(err, &verrs) {
		return apperrors.BadRequest(verrs.Error(), err)
	}
	if converted := validator.FromBinding(err); converted != nil {
		return apperrors.BadRequest(converted.Error(), err)
	}
	return apperrors.BadRequest("invalid request body", err)
}
