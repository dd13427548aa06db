package controller

import (
	"crypto/subtle"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/pkg/serverutils"
	"legal-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	workerToken     string
}

func NewDocumentController(documentService service.IDocumentService, workerToken string) IDocumentController {
	return &documentController{
		documentService: documentService,
		workerToken:     workerToken,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")

	// Status reports come from the processing worker, not from a user.
	h.Put(":id/status", c.workerMiddleware, c.UpdateStatus)

	h.Post("", serverutils.JwtMiddleware, c.Register)
	h.Get("", serverutils.JwtMiddleware, c.List)
	h.Get(":id", serverutils.JwtMiddleware, c.Show)
	h.Get(":id/status", serverutils.JwtMiddleware, c.GetStatus)
}

func (c *documentController) workerMiddleware(ctx *fiber.Ctx) error {
	token := ctx.Get("X-Worker-Token")
	if c.workerToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(c.workerToken)) != 1 {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid worker token"))
	}
	return ctx.Next()
}

func (c *documentController) Register(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Register(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success register document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.GetStatus(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document status", res))
}

func (c *documentController) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateDocumentStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.UpdateStatus(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document status", res))
}
