package cli

import (
	"errors"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
	"github.com/dmitrijs2005/filmrate/internal/common"
	"github.com/dmitrijs2005/filmrate/internal/validation"
)

const unavailableMessage = "The film store is unavailable. Please try again later."

// Local rejections whose text is shown as is, without the wrapping context.
var userFacing = []error{
	common.ErrUnauthenticated,
	common.ErrUnauthorized,
	common.ErrItemNotTracked,
	common.ErrInvalidStatus,
	common.ErrInvalidRating,
	common.ErrSelfModification,
}

// userMessage renders err for the terminal. Store rejections are shown with
// the store's own message; a store that could not be reached at all gets a
// generic one.
func userMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status != 0 && apiErr.Message != "" {
			return apiErr.Message
		}
		err = apiErr.Kind
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, client.ErrUnavailable) {
		return unavailableMessage
	}
	for _, s := range userFacing {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}
