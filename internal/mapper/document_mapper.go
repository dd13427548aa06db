package mapper

import (
	"time"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}
	return &entity.Document{
		Id:           d.Id,
		UserId:       d.UserId,
		Title:        d.Title,
		StoragePath:  d.StoragePath,
		MimeType:     d.MimeType,
		PageCount:    d.PageCount,
		PageWidth:    d.PageWidth,
		PageHeight:   d.PageHeight,
		Status:       entity.DocumentStatus(d.Status),
		Progress:     d.Progress,
		StatusDetail: d.StatusDetail,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}
	return &model.Document{
		Id:           d.Id,
		UserId:       d.UserId,
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
		UpdatedAt:    updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
