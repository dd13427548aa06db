package service

import (
	"context"
	"strings"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"
	"legal-annotation-be/pkg/embedding"

	"github.com/google/uuid"
)

type ISearchService interface {
	// Search ranks the annotations visible to the user by similarity to
	// query. documentId narrows the result to one document.
	Search(ctx context.Context, userId uuid.UUID, query string, documentId *uuid.UUID) ([]*dto.SearchAnnotationsResponse, error)
}

type searchService struct {
	uowFactory        unitofwork.RepositoryFactory
	usageService      IUsageService
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
	limit             int
	threshold         float64
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	usageService IUsageService,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
	limit int,
	threshold float64,
) ISearchService {
	return &searchService{
		uowFactory:        uowFactory,
		usageService:      usageService,
		embeddingProvider: embeddingProvider,
		logger:            log,
		limit:             limit,
		threshold:         threshold,
	}
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, query string, documentId *uuid.UUID) ([]*dto.SearchAnnotationsResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, dto.NewValidationError("q", "search query is required")
	}

	if err := s.usageService.Check(ctx, userId, entity.UsageResourceAiQuery, uuid.Nil); err != nil {
		return nil, err
	}

	vector, err := s.embeddingProvider.Generate(ctx, query)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.AnnotationEmbeddingRepository().SearchSimilarWithScore(ctx, vector, s.limit, userId, documentId, s.threshold)
	if err != nil {
		return nil, err
	}

	if err := s.usageService.Increment(ctx, userId, entity.UsageResourceAiQuery); err != nil {
		s.logger.Error("SEARCH", "Failed to increment ai query usage", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}

	if len(scored) == 0 {
		return []*dto.SearchAnnotationsResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(scored))
	scores := make(map[uuid.UUID]float64, len(scored))
	for _, sr := range scored {
		id := sr.Embedding.AnnotationId
		if _, seen := scores[id]; seen {
			continue
		}
		scores[id] = sr.Similarity
		ids = append(ids, id)
	}

	specs := []specification.Specification{
		specification.ByIDs{IDs: ids},
		specification.VisibleTo{UserID: userId},
	}
	if documentId != nil {
		specs = append(specs, specification.ByDocumentID{DocumentID: *documentId})
	}
	annotations, err := uow.AnnotationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	shares, err := uow.AnnotationShareRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByAnnotationIDs{AnnotationIDs: ids},
	)
	if err != nil {
		return nil, err
	}
	permissions := make(map[uuid.UUID]entity.SharePermission, len(shares))
	for _, share := range shares {
		permissions[share.AnnotationId] = share.Permission
	}

	byId := make(map[uuid.UUID]*entity.Annotation, len(annotations))
	for _, a := range annotations {
		byId[a.Id] = a
	}

	res := make([]*dto.SearchAnnotationsResponse, 0, len(annotations))
	for _, id := range ids {
		a, ok := byId[id]
		if !ok {
			continue
		}
		acc := access{owner: a.UserId == userId, permission: permissions[id]}
		res = append(res, &dto.SearchAnnotationsResponse{
			Annotation:     *toAnnotationResponse(a, acc),
			RelevanceScore: scores[id],
		})
	}

	s.logger.Debug("SEARCH", "Annotation search finished", map[string]interface{}{
		"user_id": userId.String(),
		"results": len(res),
	})
	return res, nil
}
