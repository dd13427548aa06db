package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/events"

	"github.com/google/uuid"
)

type IAnnotationService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateAnnotationRequest) (*dto.AnnotationResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.AnnotationResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateAnnotationRequest) (*dto.AnnotationResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	ListByDocument(ctx context.Context, userId uuid.UUID, req *dto.ListAnnotationsRequest) ([]*dto.AnnotationResponse, error)
}

type annotationService struct {
	uowFactory       unitofwork.RepositoryFactory
	usageService     IUsageService
	publisherService IPublisherService
	eventPublisher   events.Publisher
	logger           logger.ILogger
	minShapeSize     float64
	now              func() time.Time
}

func NewAnnotationService(
	uowFactory unitofwork.RepositoryFactory,
	usageService IUsageService,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
	minShapeSize float64,
) IAnnotationService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &annotationService{
		uowFactory:       uowFactory,
		usageService:     usageService,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		minShapeSize:     minShapeSize,
		now:              time.Now,
	}
}

func (s *annotationService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateAnnotationRequest) (*dto.AnnotationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, owner, err := loadDocument(ctx, uow, req.DocumentId, userId)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, dto.ErrForbidden
	}

	if err := s.usageService.Check(ctx, userId, entity.UsageResourceAnnotation, document.Id); err != nil {
		return nil, err
	}

	id := uuid.New()
	if req.Id != nil && *req.Id != uuid.Nil {
		existing, err := uow.AnnotationRepository().FindOne(ctx, specification.ByID{ID: *req.Id})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("annotation %s already exists: %w", *req.Id, dto.ErrConflict)
		}
		id = *req.Id
	}

	annotation := &entity.Annotation{
		Id:         id,
		DocumentId: document.Id,
		UserId:     userId,
		PageNumber: req.PageNumber,
		Type:       entity.AnnotationType(req.Type),
		Color:      entity.AnnotationColor(req.Color),
		Position: entity.Position{
			X:      req.Position.X,
			Y:      req.Position.Y,
			Width:  req.Position.Width,
			Height: req.Position.Height,
		},
		Content:      req.Content,
		SelectedText: req.SelectedText,
		Properties:   req.Properties,
		CreatedAt:    s.now(),
	}
	if annotation.Properties == nil {
		annotation.Properties = map[string]interface{}{}
	}
	if err := validateAnnotation(annotation, document, s.minShapeSize); err != nil {
		return nil, err
	}

	if err := uow.AnnotationRepository().Create(ctx, annotation); err != nil {
		return nil, err
	}

	if err := s.usageService.Increment(ctx, userId, entity.UsageResourceAnnotation); err != nil {
		s.logger.Warn("ANNOTATION", "Failed to record usage", map[string]interface{}{
			"annotation_id": annotation.Id.String(),
			"error":         err.Error(),
		})
	}

	s.queueEmbedding(ctx, annotation)

	res := toAnnotationResponse(annotation, access{owner: true})
	s.emit(ctx, events.AnnotationCreated, annotation, userId, res, []uuid.UUID{userId})

	return res, nil
}

func (s *annotationService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.AnnotationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	annotation, acc, err := loadAnnotation(ctx, uow, id, userId)
	if err != nil {
		return nil, err
	}
	return toAnnotationResponse(annotation, acc), nil
}

func (s *annotationService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateAnnotationRequest) (*dto.AnnotationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	annotation, acc, err := requireAnnotation(ctx, uow, req.Id, userId, entity.SharePermissionEdit)
	if err != nil {
		return nil, err
	}

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: annotation.DocumentId})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, dto.NotFound("document")
	}

	textChanged := false
	if req.PageNumber != nil {
		annotation.PageNumber = *req.PageNumber
	}
	if req.Color != nil {
		annotation.Color = entity.AnnotationColor(*req.Color)
	}
	if req.Position != nil {
		annotation.Position = entity.Position{
			X:      req.Position.X,
			Y:      req.Position.Y,
			Width:  req.Position.Width,
			Height: req.Position.Height,
		}
	}
	if req.Content != nil {
		textChanged = annotation.Content == nil || *annotation.Content != *req.Content
		annotation.Content = req.Content
	}
	if req.Properties != nil {
		annotation.Properties = req.Properties
	}

	if err := validateAnnotation(annotation, document, s.minShapeSize); err != nil {
		return nil, err
	}

	now := s.now()
	annotation.UpdatedAt = &now

	if err := uow.AnnotationRepository().Update(ctx, annotation); err != nil {
		return nil, err
	}

	if textChanged {
		s.queueEmbedding(ctx, annotation)
	}

	res := toAnnotationResponse(annotation, acc)
	s.emit(ctx, events.AnnotationUpdated, annotation, userId, res, audienceOrOwner(ctx, uow, annotation, s.logger))

	return res, nil
}

// Delete removes the annotation together with its comments, shares and
// search embeddings.
func (s *annotationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	annotation, _, err := requireAnnotation(ctx, uow, id, userId, entity.SharePermissionEdit)
	if err != nil {
		return err
	}
	// Shares are deleted below, so collect who to notify first.
	users := audienceOrOwner(ctx, uow, annotation, s.logger)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.AnnotationCommentRepository().DeleteByAnnotationId(ctx, id); err != nil {
		return err
	}
	if err := uow.AnnotationShareRepository().DeleteByAnnotationId(ctx, id); err != nil {
		return err
	}
	if err := uow.AnnotationEmbeddingRepository().DeleteByAnnotationId(ctx, id); err != nil {
		return err
	}
	if err := uow.AnnotationRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.emit(ctx, events.AnnotationDeleted, annotation, userId, map[string]interface{}{"id": annotation.Id}, users)
	return nil
}

func (s *annotationService) ListByDocument(ctx context.Context, userId uuid.UUID, req *dto.ListAnnotationsRequest) ([]*dto.AnnotationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	_, owner, err := loadDocument(ctx, uow, req.DocumentId, userId)
	if err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByDocumentID{DocumentID: req.DocumentId},
		specification.VisibleTo{UserID: userId},
	}
	if req.PageNumber != nil {
		specs = append(specs, specification.ByPageNumber{PageNumber: *req.PageNumber})
	}
	if req.Type != "" {
		specs = append(specs, specification.ByAnnotationType{Type: req.Type})
	}
	if req.Color != "" {
		specs = append(specs, specification.ByColor{Color: req.Color})
	}
	if req.Mine {
		specs = append(specs, specification.UserOwnedBy{UserID: userId})
	}
	specs = append(specs,
		specification.OrderBy{Field: "page_number"},
		specification.OrderBy{Field: "created_at"},
	)

	annotations, err := uow.AnnotationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	permissions := map[uuid.UUID]entity.SharePermission{}
	if !owner && len(annotations) > 0 {
		shares, err := uow.AnnotationShareRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
		if err != nil {
			return nil, err
		}
		for _, share := range shares {
			permissions[share.AnnotationId] = share.Permission
		}
	}

	res := make([]*dto.AnnotationResponse, 0, len(annotations))
	for _, a := range annotations {
		acc := access{owner: a.UserId == userId, permission: permissions[a.Id]}
		res = append(res, toAnnotationResponse(a, acc))
	}
	return res, nil
}

// queueEmbedding asks the consumer to refresh the search embedding. The
// annotation is already stored, so failures are only logged.
func (s *annotationService) queueEmbedding(ctx context.Context, annotation *entity.Annotation) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.EmbedAnnotationMessage{AnnotationId: annotation.Id})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn("ANNOTATION", "Failed to queue embedding", map[string]interface{}{
			"annotation_id": annotation.Id.String(),
			"error":         err.Error(),
		})
	}
}

func (s *annotationService) emit(ctx context.Context, eventType string, annotation *entity.Annotation, actorId uuid.UUID, data interface{}, users []uuid.UUID) {
	publishEvent(ctx, s.eventPublisher, s.logger, eventType, annotationEventData(annotation, actorId, data, users))
}

func annotationEventData(annotation *entity.Annotation, actorId uuid.UUID, data interface{}, users []uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		events.KeyDocumentId:   annotation.DocumentId,
		events.KeyAnnotationId: annotation.Id,
		events.KeyActorId:      actorId,
		events.KeyData:         data,
		events.KeyAudience:     users,
	}
}

// publishEvent sends a domain event. Events are auxiliary to the write that
// produced them, so a failure is logged and swallowed.
func publishEvent(ctx context.Context, publisher events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if err := publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
