package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/delivery"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/stores/event/repository"
)

type handler struct {
	events *repository.MongoRecorder
}

// New exposes the persisted event log. Only wired when mongo is configured.
func New(e *echo.Echo, events *repository.MongoRecorder) {
	h := &handler{events}

	e.GET("/auctions/:id/events", h.findByAuction)
}

func (h *handler) findByAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.events.FindByAuction(ctx, domain.AuctionId(id))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
