package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neonmarket/goapi/domain"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusForError(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// StatusForError maps the marketplace error taxonomy to HTTP statuses,
// falling back to the status the handler chose.
func StatusForError(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAssetOwner),
		errors.Is(err, domain.ErrNotAuctionSeller),
		errors.Is(err, domain.ErrNotPlatformOwner),
		errors.Is(err, domain.ErrNotApprovedForTransfer):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrAuctionNotEnded),
		errors.Is(err, domain.ErrAuctionAlreadySettled),
		errors.Is(err, domain.ErrAuctionHasBids),
		errors.Is(err, domain.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidReservePrice),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidFeeBasisPoints),
		errors.Is(err, domain.ErrAssetInvalid),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrAmountOverflow),
		errors.Is(err, domain.ErrAmountOutOfRange),
		errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway
	}
	return fallback
}
