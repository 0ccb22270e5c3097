package http

import (
	"errors"
	"net/http"
	"strconv"

	"lendledger-backend/internal/domain/loan"
	"lendledger-backend/internal/usecase/engine"

	"github.com/labstack/echo/v4"
)

type EngineHandler struct{ uc *engine.Usecase }

func NewEngineHandler(uc *engine.Usecase) *EngineHandler { return &EngineHandler{uc: uc} }

func (h *EngineHandler) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("", mw...)
	g.POST("/deposit", h.Deposit)
	g.POST("/withdraw", h.Withdraw)
	g.POST("/loans", h.RequestLoan)
	g.POST("/loans/:loan_id/fund", h.FundLoan)
	g.POST("/loans/:loan_id/repay", h.RepayLoan)
	g.GET("/loans/:loan_id", h.GetLoan)
	g.GET("/balance", h.Balance)
	g.GET("/stats", h.Stats)
}

type amountReq struct {
	Amount uint64 `json:"amount" validate:"required"`
}

type requestLoanReq struct {
	Amount         uint64 `json:"amount" validate:"required"`
	DurationBlocks uint64 `json:"duration_blocks" validate:"required"`
	Collateral     uint64 `json:"collateral"` // 0 is legal when amount is 1
}

// engineError maps the engine's folded error kinds onto the wire. The
// ambiguity (insufficient_funds covering wrong state and wrong caller too)
// is intentional and mirrored here untouched.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
	case errors.Is(err, loan.ErrInsufficientFunds):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "insufficient_funds"})
	case errors.Is(err, loan.ErrInvalidAmount):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid_amount"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + PrincipalHeader})
}

func badLoanID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid loan_id"})
}

func (h *EngineHandler) Deposit(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	got, err := h.uc.Deposit(c.Request().Context(), caller, req.Amount)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]uint64{"amount": got})
}

func (h *EngineHandler) Withdraw(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	got, err := h.uc.Withdraw(c.Request().Context(), caller, req.Amount)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]uint64{"amount": got})
}

func (h *EngineHandler) RequestLoan(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	loanID, err := h.uc.RequestLoan(c.Request().Context(), caller, engine.RequestLoanInput{
		Amount:           req.Amount,
		DurationBlocks:   req.DurationBlocks,
		CollateralAmount: req.Collateral,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]uint64{"loan_id": loanID})
}

func (h *EngineHandler) FundLoan(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	if err != nil || id == 0 {
		return badLoanID(c)
	}
	if err := h.uc.FundLoan(c.Request().Context(), caller, id); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": id, "status": "active"})
}

func (h *EngineHandler) RepayLoan(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	if err != nil || id == 0 {
		return badLoanID(c)
	}
	totalOwed, err := h.uc.RepayLoan(c.Request().Context(), caller, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]uint64{"loan_id": id, "total_owed": totalOwed})
}

func (h *EngineHandler) GetLoan(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	if err != nil || id == 0 {
		return badLoanID(c)
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *EngineHandler) Balance(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	dto, err := h.uc.Balance(c.Request().Context(), caller)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *EngineHandler) Stats(c echo.Context) error {
	dto, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
