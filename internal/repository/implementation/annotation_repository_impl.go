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
)

type AnnotationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnotationMapper
}

func NewAnnotationRepository(db *gorm.DB) contract.AnnotationRepository {
	return &AnnotationRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnotationMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnnotationRepositoryImpl) Create(ctx context.Context, annotation *entity.Annotation) error {
	m := r.mapper.ToModel(annotation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*annotation = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnnotationRepositoryImpl) Update(ctx context.Context, annotation *entity.Annotation) error {
	m := r.mapper.ToModel(annotation)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*annotation = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnnotationRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Annotation{}, id).Error
}

func (r *AnnotationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Annotation, error) {
	var m model.Annotation
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Annotation{}), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AnnotationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Annotation, error) {
	var models []*model.Annotation
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Annotation{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnnotationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Annotation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
