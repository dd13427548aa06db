package service

import (
	"context"
	"errors"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/events"

	"github.com/google/uuid"
)

type ICommentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	// List returns top-level comments oldest first, each with its replies.
	List(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID) ([]*dto.CommentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, commentId uuid.UUID) error
}

type commentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewCommentService(uowFactory unitofwork.RepositoryFactory, eventPublisher events.Publisher, log logger.ILogger) ICommentService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &commentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

func (s *commentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	annotation, _, err := requireAnnotation(ctx, uow, req.AnnotationId, userId, entity.SharePermissionComment)
	if err != nil {
		return nil, err
	}

	if req.ParentId != nil {
		parent, err := uow.AnnotationCommentRepository().FindOne(ctx,
			specification.ByID{ID: *req.ParentId},
			specification.ByAnnotationID{AnnotationID: annotation.Id},
		)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, dto.NotFound("parent comment")
		}
		if parent.ParentId != nil {
			return nil, dto.NewValidationError("parent_id", "replies can't be nested")
		}
	}

	comment := &entity.AnnotationComment{
		Id:           uuid.New(),
		AnnotationId: annotation.Id,
		UserId:       userId,
		ParentId:     req.ParentId,
		Content:      req.Content,
		CreatedAt:    s.now(),
	}
	if err := uow.AnnotationCommentRepository().Create(ctx, comment); err != nil {
		return nil, err
	}

	res := toCommentResponse(comment)
	publishEvent(ctx, s.eventPublisher, s.logger, events.CommentCreated,
		annotationEventData(annotation, userId, res, audienceOrOwner(ctx, uow, annotation, s.logger)))
	return res, nil
}

func (s *commentService) List(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID) ([]*dto.CommentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, _, err := loadAnnotation(ctx, uow, annotationId, userId); err != nil {
		return nil, err
	}

	comments, err := uow.AnnotationCommentRepository().FindAll(ctx,
		specification.ByAnnotationID{AnnotationID: annotationId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return buildThreads(comments), nil
}

// Delete is allowed for the comment author and the annotation owner.
// Replies go with their parent.
func (s *commentService) Delete(ctx context.Context, userId uuid.UUID, commentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	comment, err := uow.AnnotationCommentRepository().FindOne(ctx, specification.ByID{ID: commentId})
	if err != nil {
		return err
	}
	if comment == nil {
		return dto.NotFound("comment")
	}

	annotation, acc, err := loadAnnotation(ctx, uow, comment.AnnotationId, userId)
	if errors.Is(err, dto.ErrNotFound) {
		return dto.NotFound("comment")
	}
	if err != nil {
		return err
	}
	if comment.UserId != userId && !acc.owner {
		return dto.ErrForbidden
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if comment.ParentId == nil {
		if err := uow.AnnotationCommentRepository().DeleteReplies(ctx, comment.Id); err != nil {
			return err
		}
	}
	if err := uow.AnnotationCommentRepository().Delete(ctx, comment.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.CommentDeleted,
		annotationEventData(annotation, userId, map[string]interface{}{"id": comment.Id}, audienceOrOwner(ctx, uow, annotation, s.logger)))
	return nil
}

func toCommentResponse(c *entity.AnnotationComment) *dto.CommentResponse {
	return &dto.CommentResponse{
		Id:           c.Id,
		AnnotationId: c.AnnotationId,
		UserId:       c.UserId,
		ParentId:     c.ParentId,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// buildThreads nests replies under their parents, keeping input order.
// Replies whose parent is missing are dropped.
func buildThreads(comments []*entity.AnnotationComment) []*dto.CommentResponse {
	roots := make([]*dto.CommentResponse, 0)
	byId := make(map[uuid.UUID]*dto.CommentResponse)
	for _, c := range comments {
		if c.ParentId != nil {
			continue
		}
		res := toCommentResponse(c)
		byId[c.Id] = res
		roots = append(roots, res)
	}
	for _, c := range comments {
		if c.ParentId == nil {
			continue
		}
		if parent, ok := byId[*c.ParentId]; ok {
			parent.Replies = append(parent.Replies, toCommentResponse(c))
		}
	}
	return roots
}
