package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/delivery"
	"github.com/neonmarket/goapi/base/validator"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/ledger"
)

type handler struct {
	ledgerUC ledger.UseCase
}

func New(e *echo.Echo, ledgerUC ledger.UseCase) {
	h := &handler{ledgerUC}

	g := e.Group("/balances")

	g.GET("/:address", h.getBalance)
	g.POST("/withdraw", h.withdraw)
}

func (h *handler) getBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := c.Param("address")
	if !validator.IsValidAddress(address) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}

	balance, err := h.ledgerUC.GetBalance(ctx, domain.Address(address))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]interface{}{"balance": balance.String()})
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Caller string `json:"caller" validate:"required"`
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

	amount, err := h.ledgerUC.Withdraw(ctx, domain.Address(p.Caller))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]interface{}{"amount": amount.String()})
}
