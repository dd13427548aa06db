package controller

import (
	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/pkg/serverutils"
	"legal-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IAuthoringController exposes drawing sessions over REST. The same
// operations are reachable over the websocket.
type IAuthoringController interface {
	RegisterRoutes(r fiber.Router)
}

type authoringController struct {
	authoringService service.IAuthoringService
}

func NewAuthoringController(authoringService service.IAuthoringService) IAuthoringController {
	return &authoringController{
		authoringService: authoringService,
	}
}

func (c *authoringController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/authoring/v1/sessions")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Open)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Close)
	h.Post(":id/tool", c.SelectTool)
	h.Delete(":id/tool", c.DeselectTool)
	h.Put(":id/viewport", c.UpdateViewport)
	h.Post(":id/pointer", c.Pointer)
	h.Put(":id/selection", c.SelectAnnotation)
	h.Put(":id/annotations/:annotationId", c.UpdateAnnotation)
	h.Delete(":id/annotations/:annotationId", c.DeleteAnnotation)
}

func sessionParams(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userId, sessionId, nil
}

func (c *authoringController) Open(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAuthoringSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authoringService.Open(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success open session", res))
}

func (c *authoringController) Show(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.authoringService.Show(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *authoringController) Close(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	if err := c.authoringService.Close(ctx.UserContext(), userId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success close session", nil))
}

func (c *authoringController) SelectTool(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	var req dto.SelectToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authoringService.SelectTool(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select tool", res))
}

func (c *authoringController) DeselectTool(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	res, err := c.authoringService.DeselectTool(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success deselect tool", res))
}

func (c *authoringController) UpdateViewport(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateViewportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authoringService.UpdateViewport(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update viewport", res))
}

func (c *authoringController) Pointer(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	var req dto.PointerEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authoringService.Pointer(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle pointer", res))
}

func (c *authoringController) SelectAnnotation(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}

	var req dto.SelectAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.authoringService.SelectAnnotation(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select annotation", res))
}

func (c *authoringController) UpdateAnnotation(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}
	annotationId, err := serverutils.ParamUUID(ctx, "annotationId")
	if err != nil {
		return err
	}

	var req dto.UpdateAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = annotationId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authoringService.UpdateAnnotation(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update annotation", res))
}

func (c *authoringController) DeleteAnnotation(ctx *fiber.Ctx) error {
	userId, sessionId, err := sessionParams(ctx)
	if err != nil {
		return err
	}
	annotationId, err := serverutils.ParamUUID(ctx, "annotationId")
	if err != nil {
		return err
	}

	if err := c.authoringService.DeleteAnnotation(ctx.UserContext(), userId, sessionId, annotationId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete annotation", nil))
}
