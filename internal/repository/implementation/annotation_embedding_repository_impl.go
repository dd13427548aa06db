package implementation

import (
	"context"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/mapper"
	"legal-annotation-be/internal/model"
	"legal-annotation-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnnotationEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnotationMapper
}

func NewAnnotationEmbeddingRepository(db *gorm.DB) contract.AnnotationEmbeddingRepository {
	return &AnnotationEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnotationMapper(),
	}
}

func (r *AnnotationEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.AnnotationEmbedding) error {
	m := r.mapper.EmbeddingToModel(embedding)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "annotation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "embedding_value", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.EmbeddingToEntity(m)
	return nil
}

func (r *AnnotationEmbeddingRepositoryImpl) DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("annotation_id = ?", annotationId).Delete(&model.AnnotationEmbedding{}).Error
}

// SearchSimilarWithScore returns embeddings of annotations visible to the user
// whose cosine similarity to the query reaches the threshold. A non-nil
// documentId restricts the ranking to that document.
func (r *AnnotationEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, documentId *uuid.UUID, threshold float64) ([]*contract.ScoredAnnotationEmbedding, error) {
	if limit <= 0 {
		limit = 10
	}

	// pgvector cosine distance is 1 - cosine_similarity
	type result struct {
		model.AnnotationEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)
	shared := r.db.Table("annotation_shares").Select("annotation_id").Where("user_id = ?", userId)

	query := r.db.WithContext(ctx).
		Table("annotation_embeddings").
		Select("annotation_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN annotations ON annotations.id = annotation_embeddings.annotation_id").
		Where("annotations.user_id = ? OR annotations.id IN (?)", userId, shared).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)
	if documentId != nil {
		query = query.Where("annotations.document_id = ?", *documentId)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredAnnotationEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredAnnotationEmbedding{
			Embedding:  r.mapper.EmbeddingToEntity(&res.AnnotationEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
