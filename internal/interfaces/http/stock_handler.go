package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// stockLevelReader lo implementan ledger.BalanceReader y la caché de stock.
type stockLevelReader interface {
	StockLevels(ctx context.Context, productIDs []string) ([]entity.StockLevel, error)
}

// StockHandler consultas de stock, historial, integridad y ajustes (protegido). Solo lectura.
type StockHandler struct {
	levels  stockLevelReader
	reader  *ledger.BalanceReader
	auditor *ledger.IntegrityAuditor
	adjust  *ledger.AdjustmentCalculator
	log     zerolog.Logger
}

// NewStockHandler levels puede ser la caché; si es nil se lee directo del libro.
func NewStockHandler(
	levels stockLevelReader,
	reader *ledger.BalanceReader,
	auditor *ledger.IntegrityAuditor,
	adjust *ledger.AdjustmentCalculator,
	log zerolog.Logger,
) *StockHandler {
	if levels == nil {
		levels = reader
	}
	return &StockHandler{levels: levels, reader: reader, auditor: auditor, adjust: adjust, log: log}
}

// List godoc
// @Summary      Stock actual de varios productos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_ids  query  string  true  "IDs separados por coma"
// @Success      200  {array}   dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	ids := splitIDs(c.Query("product_ids"))
	if len(ids) == 0 {
		return respondError(c, h.log, domain.NewValidationError("product_ids", "requerido"))
	}
	levels, err := h.levels.StockLevels(c.Context(), ids)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToStockLevelResponses(levels))
}

// Get godoc
// @Summary      Stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	levels, err := h.levels.StockLevels(c.Context(), []string{c.Params("productId")})
	if err != nil {
		return respondError(c, h.log, err)
	}
	if len(levels) == 0 {
		return respondError(c, h.log, domain.ErrNotFound)
	}
	return c.JSON(ledger.ToStockLevelResponses(levels)[0])
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Description  Más reciente primero. balances=true recalcula el saldo acumulado de la página.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        from       query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to         query  string  false  "RFC3339 o YYYY-MM-DD (inclusive)"
// @Param        limit      query  int     false  "máximo 500"
// @Param        offset     query  int     false  "desplazamiento"
// @Param        balances   query  bool    false  "incluir running_balance"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var q dto.HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	from, err := parseBound(q.From, false)
	if err != nil {
		return respondError(c, h.log, domain.NewValidationError("from", "formato esperado RFC3339 o YYYY-MM-DD"))
	}
	to, err := parseBound(q.To, true)
	if err != nil {
		return respondError(c, h.log, domain.NewValidationError("to", "formato esperado RFC3339 o YYYY-MM-DD"))
	}
	page, err := h.reader.History(c.Context(), c.Params("productId"), ledger.HistoryOptions{
		From:         from,
		To:           to,
		Limit:        q.Limit,
		Offset:       q.Offset,
		WithBalances: q.Balances,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToHistoryResponse(page, q.Balances))
}

// Integrity godoc
// @Summary      Verificar la cadena de saldos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.IntegrityReportResponse
// @Router       /api/stock/{productId}/integrity [get]
func (h *StockHandler) Integrity(c *fiber.Ctx) error {
	report, err := h.auditor.VerifyIntegrity(c.Context(), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToIntegrityResponse(report))
}

// Availability godoc
// @Summary      Pre-chequeo de disponibilidad
// @Description  No bloquea ni escribe; el registro vuelve a validar al confirmar.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AvailabilityRequest  true  "type, items"
// @Success      200   {object}  dto.AvailabilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/availability [post]
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, items, err := ledger.AvailabilityFromDTO(in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.reader.CheckAvailability(c.Context(), t, items, in.AllowNegative)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.AvailabilityResponse{Valid: res.Valid, Shortfalls: res.Errors}
	if out.Shortfalls == nil {
		out.Shortfalls = []domain.StockShortfall{}
	}
	return c.JSON(out)
}

// AdjustmentPlan godoc
// @Summary      Plan de ajuste por conteo físico
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                     true  "ID del producto"
// @Param        body       body  dto.AdjustmentPlanRequest  true  "actual_count"
// @Success      200  {object}  dto.AdjustmentPlanResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/adjustment-plan [post]
func (h *StockHandler) AdjustmentPlan(c *fiber.Ctx) error {
	var in dto.AdjustmentPlanRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	plan, err := h.adjust.CalculateAdjustment(c.Context(), c.Params("productId"), in.ActualCount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToAdjustmentPlanResponse(plan))
}

// AdjustmentPlanBatch godoc
// @Summary      Plan de ajuste para un conteo por lote
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentBatchRequest  true  "counts"
// @Success      200   {object}  dto.AdjustmentBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustment-plan [post]
func (h *StockHandler) AdjustmentPlanBatch(c *fiber.Ctx) error {
	var in dto.AdjustmentBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	counts := make([]ledger.PhysicalCount, 0, len(in.Counts))
	for _, cnt := range in.Counts {
		counts = append(counts, ledger.PhysicalCount{ProductID: cnt.ProductID, ActualCount: cnt.ActualCount})
	}
	batch, err := h.adjust.CalculateAdjustmentBatch(c.Context(), counts)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToAdjustmentBatchResponse(batch))
}

func splitIDs(raw string) []string {
	var ids []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// parseBound acepta RFC3339 o fecha sola; una fecha sola como límite superior cubre el día completo.
func parseBound(raw string, upper bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if upper {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return &d, nil
}
