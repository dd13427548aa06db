package mapper

import (
	"time"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type AnnotationMapper struct{}

func NewAnnotationMapper() *AnnotationMapper {
	return &AnnotationMapper{}
}

func (m *AnnotationMapper) ToEntity(a *model.Annotation) *entity.Annotation {
	if a == nil {
		return nil
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	var properties map[string]interface{}
	if a.Properties != nil {
		properties = map[string]interface{}(a.Properties)
	}

	return &entity.Annotation{
		Id:         a.Id,
		DocumentId: a.DocumentId,
		UserId:     a.UserId,
		PageNumber: a.PageNumber,
		Type:       entity.AnnotationType(a.Type),
		Color:      entity.AnnotationColor(a.Color),
		Position: entity.Position{
			X:      a.PositionX,
			Y:      a.PositionY,
			Width:  a.Width,
			Height: a.Height,
		},
		Content:      a.Content,
		SelectedText: a.SelectedText,
		Properties:   properties,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *AnnotationMapper) ToModel(a *entity.Annotation) *model.Annotation {
	if a == nil {
		return nil
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	var properties datatypes.JSONMap
	if a.Properties != nil {
		properties = datatypes.JSONMap(a.Properties)
	}

	return &model.Annotation{
		Id:           a.Id,
		DocumentId:   a.DocumentId,
		UserId:       a.UserId,
		PageNumber:   a.PageNumber,
		Type:         string(a.Type),
		Color:        string(a.Color),
		PositionX:    a.Position.X,
		PositionY:    a.Position.Y,
		Width:        a.Position.Width,
		Height:       a.Position.Height,
		Content:      a.Content,
		SelectedText: a.SelectedText,
		Properties:   properties,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *AnnotationMapper) ToEntities(annotations []*model.Annotation) []*entity.Annotation {
	entities := make([]*entity.Annotation, len(annotations))
	for i, a := range annotations {
		entities[i] = m.ToEntity(a)
	}
	return entities
}

func (m *AnnotationMapper) CommentToEntity(c *model.AnnotationComment) *entity.AnnotationComment {
	if c == nil {
		return nil
	}
	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}
	return &entity.AnnotationComment{
		Id:           c.Id,
		AnnotationId: c.AnnotationId,
		UserId:       c.UserId,
		ParentId:     c.ParentId,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *AnnotationMapper) CommentToModel(c *entity.AnnotationComment) *model.AnnotationComment {
	if c == nil {
		return nil
	}
	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}
	return &model.AnnotationComment{
		Id:           c.Id,
		AnnotationId: c.AnnotationId,
		UserId:       c.UserId,
		ParentId:     c.ParentId,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *AnnotationMapper) ShareToEntity(s *model.AnnotationShare) *entity.AnnotationShare {
	if s == nil {
		return nil
	}
	return &entity.AnnotationShare{
		Id:           s.Id,
		AnnotationId: s.AnnotationId,
		UserId:       s.UserId,
		Permission:   entity.SharePermission(s.Permission),
		GrantedBy:    s.GrantedBy,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *AnnotationMapper) ShareToModel(s *entity.AnnotationShare) *model.AnnotationShare {
	if s == nil {
		return nil
	}
	return &model.AnnotationShare{
		Id:           s.Id,
		AnnotationId: s.AnnotationId,
		UserId:       s.UserId,
		Permission:   string(s.Permission),
		GrantedBy:    s.GrantedBy,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *AnnotationMapper) EmbeddingToEntity(e *model.AnnotationEmbedding) *entity.AnnotationEmbedding {
	if e == nil {
		return nil
	}
	return &entity.AnnotationEmbedding{
		Id:           e.Id,
		AnnotationId: e.AnnotationId,
		Document:     e.Document,
		Value:        e.EmbeddingValue.Slice(),
		CreatedAt:    e.CreatedAt,
	}
}

func (m *AnnotationMapper) EmbeddingToModel(e *entity.AnnotationEmbedding) *model.AnnotationEmbedding {
	if e == nil {
		return nil
	}
	return &model.AnnotationEmbedding{
		Id:             e.Id,
		AnnotationId:   e.AnnotationId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.Value),
		CreatedAt:      e.CreatedAt,
	}
}
