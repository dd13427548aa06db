package controller

import (
	"strconv"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/pkg/serverutils"
	"legal-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnnotationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ListByDocument(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	CreateComment(ctx *fiber.Ctx) error
	ListComments(ctx *fiber.Ctx) error
	DeleteComment(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	ListShares(ctx *fiber.Ctx) error
	Revoke(ctx *fiber.Ctx) error
}

type annotationController struct {
	annotationService service.IAnnotationService
	commentService    service.ICommentService
	shareService      service.IShareService
	searchService     service.ISearchService
}

func NewAnnotationController(
	annotationService service.IAnnotationService,
	commentService service.ICommentService,
	shareService service.IShareService,
	searchService service.ISearchService,
) IAnnotationController {
	return &annotationController{
		annotationService: annotationService,
		commentService:    commentService,
		shareService:      shareService,
		searchService:     searchService,
	}
}

func (c *annotationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/annotation/v1")
	h.Use(serverutils.JwtMiddleware)
	// Static segments before :id
	h.Get("search", c.Search)
	h.Get("document/:documentId", c.ListByDocument)
	h.Delete("comments/:commentId", c.DeleteComment)

	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)

	h.Post(":id/comments", c.CreateComment)
	h.Get(":id/comments", c.ListComments)

	h.Post(":id/shares", c.Share)
	h.Get(":id/shares", c.ListShares)
	h.Delete(":id/shares/:userId", c.Revoke)
}

func (c *annotationController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.annotationService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create annotation", res))
}

func (c *annotationController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.annotationService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show annotation", res))
}

func (c *annotationController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.annotationService.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update annotation", res))
}

func (c *annotationController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.annotationService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete annotation", nil))
}

// ListByDocument accepts ?page=, ?type=, ?color= and ?mine=true.
func (c *annotationController) ListByDocument(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	documentId, err := serverutils.ParamUUID(ctx, "documentId")
	if err != nil {
		return err
	}

	req := dto.ListAnnotationsRequest{
		DocumentId: documentId,
		Type:       ctx.Query("type"),
		Color:      ctx.Query("color"),
		Mine:       ctx.QueryBool("mine", false),
	}
	if raw := ctx.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return dto.NewValidationError("page", "must be a positive integer")
		}
		req.PageNumber = &page
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.annotationService.ListByDocument(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list annotations", res))
}

func (c *annotationController) Search(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var documentId *uuid.UUID
	if raw := ctx.Query("document_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return dto.NewValidationError("document_id", "must be a valid uuid")
		}
		documentId = &id
	}

	res, err := c.searchService.Search(ctx.UserContext(), userId, ctx.Query("q"), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search annotations", res))
}

func (c *annotationController) CreateComment(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.CreateCommentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.AnnotationId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.commentService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create comment", res))
}

func (c *annotationController) ListComments(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.commentService.List(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list comments", res))
}

func (c *annotationController) DeleteComment(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	commentId, err := serverutils.ParamUUID(ctx, "commentId")
	if err != nil {
		return err
	}

	if err := c.commentService.Delete(ctx.UserContext(), userId, commentId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete comment", nil))
}

func (c *annotationController) Share(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ShareAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.AnnotationId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.shareService.Share(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success share annotation", res))
}

func (c *annotationController) ListShares(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.shareService.List(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list shares", res))
}

func (c *annotationController) Revoke(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}
	grantee, err := serverutils.ParamUUID(ctx, "userId")
	if err != nil {
		return err
	}

	if err := c.shareService.Revoke(ctx.UserContext(), userId, id, grantee); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success revoke share", nil))
}
