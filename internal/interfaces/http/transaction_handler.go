package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// TransactionHandler registro, consulta y reversión de transacciones (protegido).
type TransactionHandler struct {
	create  *ledger.CreateTransactionUseCase
	reverse *ledger.ReverseTransactionUseCase
	queries *ledger.TransactionQueryUseCase
	log     zerolog.Logger
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(
	create *ledger.CreateTransactionUseCase,
	reverse *ledger.ReverseTransactionUseCase,
	queries *ledger.TransactionQueryUseCase,
	log zerolog.Logger,
) *TransactionHandler {
	return &TransactionHandler{create: create, reverse: reverse, queries: queries, log: log}
}

// Create godoc
// @Summary      Registrar transacción de inventario
// @Description  Valida, numera y escribe la transacción con un movimiento por ítem en una sola unidad de trabajo.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "type, transaction_date, supplier_id (IN), items"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	req, err := ledger.FromDTO(in, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	txn, err := h.create.CreateTransaction(c.Context(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToTransactionResponse(txn))
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	txn, err := h.queries.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToTransactionResponse(txn))
}

// AmendNotes godoc
// @Summary      Corregir notas de una transacción
// @Description  Única modificación permitida sobre una transacción registrada.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la transacción"
// @Param        body  body  dto.AmendNotesRequest  true  "notes"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/notes [patch]
func (h *TransactionHandler) AmendNotes(c *fiber.Ctx) error {
	var in dto.AmendNotesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	txn, err := h.queries.AmendNotes(c.Context(), c.Params("id"), in.Notes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ledger.ToTransactionResponse(txn))
}

// Reverse godoc
// @Summary      Revertir transacción
// @Description  Registra la transacción compensatoria. Cada transacción se revierte una sola vez.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true   "ID de la transacción original"
// @Param        body  body  dto.ReverseTransactionRequest  false  "notes"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/reverse [post]
func (h *TransactionHandler) Reverse(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ReverseTransactionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	txn, err := h.reverse.ReverseTransaction(c.Context(), ledger.ReversalRequest{
		TransactionID: c.Params("id"),
		UserID:        userID,
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToTransactionResponse(txn))
}
