package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/delivery"
	"github.com/neonmarket/goapi/base/validator"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/market"
)

type handler struct {
	configUC market.ConfigUseCase
}

func New(e *echo.Echo, configUC market.ConfigUseCase) {
	h := &handler{configUC}

	g := e.Group("/marketplace")

	g.POST("/initialize", h.initialize)
	g.PUT("/fee", h.updateFee)
	g.GET("/fee", h.getFee)
	g.GET("/owner", h.getOwner)
	g.GET("/next-auction-id", h.getNextAuctionId)
}

func (h *handler) initialize(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Caller string `json:"caller" validate:"required"`
		FeeBps uint64 `json:"feeBps"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if !validator.IsValidAddress(p.Caller) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}

	if err := h.configUC.Initialize(ctx, domain.Address(p.Caller), p.FeeBps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) updateFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Caller string `json:"caller" validate:"required"`
		FeeBps uint64 `json:"feeBps"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if !validator.IsValidAddress(p.Caller) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}

	if err := h.configUC.UpdateFee(ctx, domain.Address(p.Caller), p.FeeBps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) getFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	feeBps, err := h.configUC.GetFeeBps(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]interface{}{"feeBps": feeBps})
}

func (h *handler) getOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	owner, err := h.configUC.GetOwner(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]interface{}{"owner": owner})
}

func (h *handler) getNextAuctionId(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := h.configUC.GetNextAuctionId(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]interface{}{"nextAuctionId": id})
}
