package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorBody is the JSON shape of every failed request
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPStatus maps a failure code to its HTTP status
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus writes err as a tagged failure. Errors without a status, and
// Internal ones, never expose their message.
func FromStatus(c *gin.Context, err error) {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.Internal || st.Code() == codes.Unknown {
		Error(c, codes.Internal, "internal error")
		return
	}
	Error(c, st.Code(), st.Message())
}

// Error sends a standardized error response
func Error(c *gin.Context, code codes.Code, message string) {
	c.JSON(HTTPStatus(code), ErrorBody{Error: ErrorDetail{Code: code.String(), Message: message}})
}

// Success sends a standardized success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// ValidationError sends a response for a malformed request body
func ValidationError(c *gin.Context, err error) {
	Error(c, codes.InvalidArgument, "invalid request: "+err.Error())
}
