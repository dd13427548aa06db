package implementation

import (
	"context"
	"errors"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/mapper"
	"legal-annotation-be/internal/model"
	"legal-annotation-be/internal/repository/contract"
	"legal-annotation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnnotationShareRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnotationMapper
}

func NewAnnotationShareRepository(db *gorm.DB) contract.AnnotationShareRepository {
	return &AnnotationShareRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnotationMapper(),
	}
}

func (r *AnnotationShareRepositoryImpl) Upsert(ctx context.Context, share *entity.AnnotationShare) error {
	m := r.mapper.ShareToModel(share)
	err := r.db.WithContext(ctx).
		Omit("Annotation").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "annotation_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"permission", "granted_by"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*share = *r.mapper.ShareToEntity(m)
	return nil
}

func (r *AnnotationShareRepositoryImpl) Delete(ctx context.Context, annotationId uuid.UUID, userId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("annotation_id = ? AND user_id = ?", annotationId, userId).
		Delete(&model.AnnotationShare{}).Error
}

func (r *AnnotationShareRepositoryImpl) DeleteByAnnotationId(ctx context.Context, annotationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("annotation_id = ?", annotationId).Delete(&model.AnnotationShare{}).Error
}

func (r *AnnotationShareRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnnotationShare, error) {
	var m model.AnnotationShare
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ShareToEntity(&m), nil
}

func (r *AnnotationShareRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnnotationShare, error) {
	var models []*model.AnnotationShare
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AnnotationShare, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ShareToEntity(m)
	}
	return entities, nil
}

func (r *AnnotationShareRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.AnnotationShare{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
