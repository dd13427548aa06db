package service

import (
	"context"
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

type IDocumentService interface {
	Register(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	GetStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentStatusResponse, error)
	// UpdateStatus records progress reported by the processing worker.
	UpdateStatus(ctx context.Context, req *dto.UpdateDocumentStatusRequest) (*dto.DocumentStatusResponse, error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	usageService   IUsageService
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, usageService IUsageService, eventPublisher events.Publisher, log logger.ILogger) IDocumentService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &documentService{
		uowFactory:     uowFactory,
		usageService:   usageService,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

func (s *documentService) Register(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := s.usageService.Check(ctx, userId, entity.UsageResourceDocumentUpload, uuid.Nil); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document := &entity.Document{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       req.Title,
		StoragePath: req.StoragePath,
		MimeType:    req.MimeType,
		PageCount:   req.PageCount,
		PageWidth:   req.PageWidth,
		PageHeight:  req.PageHeight,
		Status:      entity.DocumentStatusQueued,
		CreatedAt:   s.now(),
	}
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}

	if err := s.usageService.Increment(ctx, userId, entity.UsageResourceDocumentUpload); err != nil {
		s.logger.Error("DOCUMENT", "Failed to increment upload usage", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
	}

	s.logger.Info("DOCUMENT", "Document registered", map[string]interface{}{
		"document_id": document.Id.String(),
		"user_id":     userId.String(),
	})
	return toDocumentResponse(document), nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, _, err := loadDocument(ctx, uow, id, userId)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		res = append(res, toDocumentResponse(d))
	}
	return res, nil
}

func (s *documentService) GetStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, _, err := loadDocument(ctx, uow, id, userId)
	if err != nil {
		return nil, err
	}
	return toDocumentStatusResponse(document), nil
}

func (s *documentService) UpdateStatus(ctx context.Context, req *dto.UpdateDocumentStatusRequest) (*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, dto.NotFound("document")
	}

	next := entity.DocumentStatus(req.Status)
	if err := checkStatusTransition(document, next, req.Progress); err != nil {
		return nil, err
	}

	document.Status = next
	document.Progress = req.Progress
	if next == entity.DocumentStatusCompleted {
		document.Progress = 100
	}
	document.StatusDetail = req.Detail
	if req.PageCount != nil {
		document.PageCount = *req.PageCount
	}
	now := s.now()
	document.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}

	res := toDocumentStatusResponse(document)
	publishEvent(ctx, s.eventPublisher, s.logger, events.DocumentStatus, map[string]interface{}{
		events.KeyDocumentId: document.Id,
		events.KeyActorId:    document.UserId,
		events.KeyData:       res,
	})

	if next.Terminal() {
		s.logger.Info("DOCUMENT", "Document processing finished", map[string]interface{}{
			"document_id": document.Id.String(),
			"status":      string(next),
		})
	}
	return res, nil
}

func statusRank(s entity.DocumentStatus) int {
	switch s {
	case entity.DocumentStatusQueued:
		return 0
	case entity.DocumentStatusProcessing:
		return 1
	}
	return 2
}

// checkStatusTransition allows queued -> processing -> completed|failed,
// repeated reports of the same status with non-decreasing progress, and
// nothing after a terminal status.
func checkStatusTransition(document *entity.Document, next entity.DocumentStatus, progress int) error {
	if !next.Valid() {
		return dto.NewValidationError("status", "unknown status %q", next)
	}
	if document.Status.Terminal() {
		return fmt.Errorf("document is already %s: %w", document.Status, dto.ErrConflict)
	}
	if statusRank(next) < statusRank(document.Status) {
		return fmt.Errorf("can't move document from %s to %s: %w", document.Status, next, dto.ErrConflict)
	}
	if next == document.Status && progress < document.Progress {
		return dto.NewValidationError("progress", "can't go back from %d to %d", document.Progress, progress)
	}
	return nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:           d.Id,
		Title:        d.Title,
		StoragePath:  d.StoragePath,
		MimeType:     d.MimeType,
		PageCount:    d.PageCount,
		PageWidth:    d.PageWidth,
		PageHeight:   d.PageHeight,
		Status:       string(d.Status),
		Progress:     d.Progress,
		StatusDetail: d.StatusDetail,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDocumentStatusResponse(d *entity.Document) *dto.DocumentStatusResponse {
	return &dto.DocumentStatusResponse{
		Id:           d.Id,
		Status:       string(d.Status),
		Progress:     d.Progress,
		StatusDetail: d.StatusDetail,
	}
}
