package contract

import (
	"context"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnnotationRepository interface {
	Create(ctx context.Context, annotation *entity.Annotation) error
	Update(ctx context.Context, annotation *entity.Annotation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Annotation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Annotation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type AnnotationCommentRepository interface {
	Create(ctx context.Context, comment *entity.AnnotationComment) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error
	DeleteReplies(ctx context.Context, parentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnnotationComment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnnotationComment, error)
}

type AnnotationShareRepository interface {
	// Upsert creates the share or updates the permission of an existing
	// (annotation, user) pair.
	Upsert(ctx context.Context, share *entity.AnnotationShare) error
	Delete(ctx context.Context, annotationId uuid.UUID, userId uuid.UUID) error
	DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnnotationShare, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnnotationShare, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ScoredAnnotationEmbedding struct {
	Embedding  *entity.AnnotationEmbedding
	Similarity float64
}

type AnnotationEmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *entity.AnnotationEmbedding) error
	DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, documentId *uuid.UUID, threshold float64) ([]*ScoredAnnotationEmbedding, error)
}
