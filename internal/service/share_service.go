package service

import (
	"context"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/events"

	"github.com/google/uuid"
)

type IShareService interface {
	// Share grants or changes a collaborator's permission. Owner only.
	Share(ctx context.Context, userId uuid.UUID, req *dto.ShareAnnotationRequest) (*dto.ShareResponse, error)
	// List shows the owner every share and a collaborator only their own.
	List(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID) ([]*dto.ShareResponse, error)
	// Revoke may be called by the owner or by the grantee leaving.
	Revoke(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID, grantee uuid.UUID) error
}

type shareService struct {
	uowFactory     unitofwork.RepositoryFactory
	usageService   IUsageService
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewShareService(uowFactory unitofwork.RepositoryFactory, usageService IUsageService, eventPublisher events.Publisher, log logger.ILogger) IShareService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &shareService{
		uowFactory:     uowFactory,
		usageService:   usageService,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

func (s *shareService) Share(ctx context.Context, userId uuid.UUID, req *dto.ShareAnnotationRequest) (*dto.ShareResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	annotation, acc, err := loadAnnotation(ctx, uow, req.AnnotationId, userId)
	if err != nil {
		return nil, err
	}
	if !acc.owner {
		return nil, dto.ErrForbidden
	}
	if req.UserId == userId {
		return nil, dto.NewValidationError("user_id", "can't share an annotation with yourself")
	}
	permission := entity.SharePermission(req.Permission)
	if !permission.Valid() {
		return nil, dto.NewValidationError("permission", "unknown permission %q", req.Permission)
	}

	if err := s.usageService.CheckCollaborators(ctx, userId, annotation.Id, req.UserId); err != nil {
		return nil, err
	}

	share := &entity.AnnotationShare{
		Id:           uuid.New(),
		AnnotationId: annotation.Id,
		UserId:       req.UserId,
		Permission:   permission,
		GrantedBy:    userId,
		CreatedAt:    s.now(),
	}
	if err := uow.AnnotationShareRepository().Upsert(ctx, share); err != nil {
		return nil, err
	}

	// An existing row keeps its id and creation time.
	stored, err := uow.AnnotationShareRepository().FindOne(ctx,
		specification.ByAnnotationID{AnnotationID: annotation.Id},
		specification.UserOwnedBy{UserID: req.UserId},
	)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		share = stored
	}

	res := toShareResponse(share)
	publishEvent(ctx, s.eventPublisher, s.logger, events.ShareGranted,
		annotationEventData(annotation, userId, res, audienceOrOwner(ctx, uow, annotation, s.logger)))
	return res, nil
}

func (s *shareService) List(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID) ([]*dto.ShareResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	_, acc, err := loadAnnotation(ctx, uow, annotationId, userId)
	if err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByAnnotationID{AnnotationID: annotationId},
		specification.OrderBy{Field: "created_at"},
	}
	if !acc.owner {
		specs = append(specs, specification.UserOwnedBy{UserID: userId})
	}

	shares, err := uow.AnnotationShareRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShareResponse, 0, len(shares))
	for _, share := range shares {
		res = append(res, toShareResponse(share))
	}
	return res, nil
}

func (s *shareService) Revoke(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID, grantee uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	annotation, acc, err := loadAnnotation(ctx, uow, annotationId, userId)
	if err != nil {
		return err
	}
	if !acc.owner && grantee != userId {
		return dto.ErrForbidden
	}

	existing, err := uow.AnnotationShareRepository().FindOne(ctx,
		specification.ByAnnotationID{AnnotationID: annotationId},
		specification.UserOwnedBy{UserID: grantee},
	)
	if err != nil {
		return err
	}
	if existing == nil {
		return dto.NotFound("share")
	}

	if err := uow.AnnotationShareRepository().Delete(ctx, annotationId, grantee); err != nil {
		return err
	}

	// The revoked user is told too so their view drops the annotation.
	users := append(audienceOrOwner(ctx, uow, annotation, s.logger), grantee)
	publishEvent(ctx, s.eventPublisher, s.logger, events.ShareRevoked,
		annotationEventData(annotation, userId, map[string]interface{}{"user_id": grantee}, users))
	return nil
}

func toShareResponse(share *entity.AnnotationShare) *dto.ShareResponse {
	return &dto.ShareResponse{
		Id:           share.Id,
		AnnotationId: share.AnnotationId,
		UserId:       share.UserId,
		Permission:   string(share.Permission),
		GrantedBy:    share.GrantedBy,
		CreatedAt:    share.CreatedAt,
	}
}
