package implementation

import (
	"context"
	"errors"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/mapper"
	"legal-annotation-be/internal/model"
	"legal-annotation-be/internal/repository/contract"
	"legal-annotation-be/internal/repository/scope"
	"legal-annotation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnotationCommentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnotationMapper
}

func NewAnnotationCommentRepository(db *gorm.DB) contract.AnnotationCommentRepository {
	return &AnnotationCommentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnotationMapper(),
	}
}

func (r *AnnotationCommentRepositoryImpl) Create(ctx context.Context, comment *entity.AnnotationComment) error {
	m := r.mapper.CommentToModel(comment)
	if err := r.db.WithContext(ctx).Omit("Annotation").Create(m).Error; err != nil {
		return err
	}
	*comment = *r.mapper.CommentToEntity(m)
	return nil
}

func (r *AnnotationCommentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AnnotationComment{}, id).Error
}

func (r *AnnotationCommentRepositoryImpl) DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("annotation_id = ?", annotationId).Delete(&model.AnnotationComment{}).Error
}

func (r *AnnotationCommentRepositoryImpl) DeleteReplies(ctx context.Context, parentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("parent_id = ?", parentId).Delete(&model.AnnotationComment{}).Error
}

func (r *AnnotationCommentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnnotationComment, error) {
	var m model.AnnotationComment
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CommentToEntity(&m), nil
}

func (r *AnnotationCommentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnnotationComment, error) {
	var models []*model.AnnotationComment
	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AnnotationComment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CommentToEntity(m)
	}
	return entities, nil
}
