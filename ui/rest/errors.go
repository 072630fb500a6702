package rest

import (
	"errors"
	"net/http"

	pkgError "github.com/shipliyo/smsgate/pkg/error"
)

// statusOf maps an error to its HTTP status and API code.
func statusOf(err error) (int, string) {
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return generic.StatusCode(), generic.ErrCode()
	}
	return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
}
