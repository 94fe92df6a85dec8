package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/infrastructure/pdf"
)

// LabelHandler maneja emisión de etiquetas, historiales y el PDF de un bulk.
// Cada endpoint existe en dos formas: cuenta top-level (:userId) y espejo de
// sub-usuario (:dealerId/:subUserId); ambas convergen en el mismo método
// privado con un OwnerRef ya autorizado.
type LabelHandler struct {
	issueUC   *labels.IssueUseCase
	historyUC *labels.HistoryUseCase
	pdfGen    *pdf.LabelPDFGenerator
}

// NewLabelHandler construye el handler de etiquetas.
func NewLabelHandler(issueUC *labels.IssueUseCase, historyUC *labels.HistoryUseCase, pdfGen *pdf.LabelPDFGenerator) *LabelHandler {
	return &LabelHandler{issueUC: issueUC, historyUC: historyUC, pdfGen: pdfGen}
}

// accountOwner autoriza y resuelve el dueño de una ruta top-level (:userId).
// Devuelve ok=false si ya respondió con 403.
func accountOwner(c *fiber.Ctx) (entity.OwnerRef, bool, error) {
	userID := c.Params("userId")
	if !canActOnAccount(c, userID) {
		return entity.OwnerRef{}, false, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "sin permiso sobre esta cuenta",
		})
	}
	return entity.OwnerRef{AccountID: userID}, true, nil
}

// subUserOwner autoriza y resuelve el dueño de una ruta espejo
// (:dealerId/:subUserId).
func subUserOwner(c *fiber.Ctx) (entity.OwnerRef, bool, error) {
	dealerID := c.Params("dealerId")
	subUserID := c.Params("subUserId")
	if !canActOnSubUser(c, dealerID, subUserID) {
		return entity.OwnerRef{}, false, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "sin permiso sobre este sub-usuario",
		})
	}
	return entity.OwnerRef{AccountID: dealerID, SubUserID: subUserID}, true, nil
}

// GenerateLabel godoc
// @Summary      Emitir una etiqueta individual
// @Tags         labels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID de la cuenta"
// @Param        body  body  dto.ShipRequest  true  "datos del envío"
// @Success      200   {object}  dto.IssueResponse
// @Failure      402   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/auth/generate-label/{userId} [put]
func (h *LabelHandler) GenerateLabel(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	return h.generateLabel(c, owner)
}

// GenerateSubUserLabel emisión individual por la ruta espejo del sub-usuario.
func (h *LabelHandler) GenerateSubUserLabel(c *fiber.Ctx) error {
	owner, ok, err := subUserOwner(c)
	if !ok {
		return err
	}
	return h.generateLabel(c, owner)
}

func (h *LabelHandler) generateLabel(c *fiber.Ctx, owner entity.OwnerRef) error {
	var in dto.ShipRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	out, err := h.issueUC.IssueOneLabel(c.Context(), owner, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// BulkGenerateLabels godoc
// @Summary      Emitir etiquetas en bloque
// @Tags         labels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID de la cuenta"
// @Param        body  body  dto.BulkIssueRequest  true  "batch con (vendor, labelType) único"
// @Success      200   {object}  dto.IssueResponse
// @Failure      402   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/auth/bulk-generate-label/{userId} [put]
func (h *LabelHandler) BulkGenerateLabels(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	return h.bulkGenerate(c, owner)
}

// BulkGenerateSubUserLabels emisión bulk por la ruta espejo del sub-usuario.
func (h *LabelHandler) BulkGenerateSubUserLabels(c *fiber.Ctx) error {
	owner, ok, err := subUserOwner(c)
	if !ok {
		return err
	}
	return h.bulkGenerate(c, owner)
}

func (h *LabelHandler) bulkGenerate(c *fiber.Ctx, owner entity.OwnerRef) error {
	var in dto.BulkIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	out, err := h.issueUC.IssueLabels(c.Context(), owner, in.Requests)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddBulkHistory godoc
// @Summary      Registrar un evento bulk ya emitido (sin débito)
// @Tags         labels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID de la cuenta"
// @Param        body  body  dto.BulkHistoryRequest  true  "etiquetas ya formadas"
// @Success      201   {object}  dto.BulkEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/add-bulk-label-history/{userId} [post]
func (h *LabelHandler) AddBulkHistory(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	var in dto.BulkHistoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if len(in.Labels) == 0 {
		return respondError(c, domain.ErrInvalidInput)
	}
	out, err := h.issueUC.AddBulkHistory(c.Context(), owner, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// LabelHistory godoc
// @Summary      Historial de etiquetas (individual + bulk)
// @Tags         labels
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.LabelHistoryResponse
// @Router       /api/auth/label-history/{userId} [get]
func (h *LabelHandler) LabelHistory(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	return h.labelHistory(c, owner)
}

// SubUserLabelHistory historial por la ruta espejo del sub-usuario.
func (h *LabelHandler) SubUserLabelHistory(c *fiber.Ctx) error {
	owner, ok, err := subUserOwner(c)
	if !ok {
		return err
	}
	return h.labelHistory(c, owner)
}

func (h *LabelHandler) labelHistory(c *fiber.Ctx, owner entity.OwnerRef) error {
	out, err := h.historyUC.GetLabelHistory(c.Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// BulkEventPDF godoc
// @Summary      Hoja PDF de las etiquetas de un evento bulk
// @Tags         labels
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        userId   path  string  true  "ID de la cuenta"
// @Param        eventId  path  string  true  "ID del evento bulk"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/label-history/{userId}/bulk/{eventId}/pdf [get]
func (h *LabelHandler) BulkEventPDF(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	_, eventLabels, err := h.historyUC.GetBulkEventLabels(c.Context(), owner, c.Params("eventId"))
	if err != nil {
		return respondError(c, err)
	}
	raw, err := h.pdfGen.GenerateLabelsPDF(eventLabels)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="labels.pdf"`)
	return c.Send(raw)
}

// BalanceHistory godoc
// @Summary      Historial de saldo
// @Tags         labels
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path   string  true   "ID de la cuenta"
// @Param        limit   query  int     false  "tamaño de página"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.BalanceEntryResponse
// @Router       /api/auth/balance-history/{userId} [get]
func (h *LabelHandler) BalanceHistory(c *fiber.Ctx) error {
	owner, ok, err := accountOwner(c)
	if !ok {
		return err
	}
	return h.balanceHistory(c, owner)
}

// SubUserBalanceHistory historial de saldo por la ruta espejo.
func (h *LabelHandler) SubUserBalanceHistory(c *fiber.Ctx) error {
	owner, ok, err := subUserOwner(c)
	if !ok {
		return err
	}
	return h.balanceHistory(c, owner)
}

func (h *LabelHandler) balanceHistory(c *fiber.Ctx, owner entity.OwnerRef) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.historyUC.GetBalanceHistory(c.Context(), owner, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
