package service

import (
	"context"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/pkg/mirror"

	"github.com/google/uuid"
)

// annotationBackend persists a session's mirror through the annotation
// service, acting as the session's user.
type annotationBackend struct {
	annotations IAnnotationService
	userId      uuid.UUID
}

var _ mirror.Backend = (*annotationBackend)(nil)

func (b *annotationBackend) List(ctx context.Context, documentId uuid.UUID, page *int) ([]*entity.Annotation, error) {
	res, err := b.annotations.ListByDocument(ctx, b.userId, &dto.ListAnnotationsRequest{
		DocumentId: documentId,
		PageNumber: page,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Annotation, 0, len(res))
	for _, r := range res {
		out = append(out, AnnotationFromResponse(r))
	}
	return out, nil
}

func (b *annotationBackend) Create(ctx context.Context, a *entity.Annotation) (*entity.Annotation, error) {
	id := a.Id
	res, err := b.annotations.Create(ctx, b.userId, &dto.CreateAnnotationRequest{
		Id:           &id,
		DocumentId:   a.DocumentId,
		PageNumber:   a.PageNumber,
		Type:         string(a.Type),
		Color:        string(a.Color),
		Position:     toPositionDTO(a.Position),
		Content:      a.Content,
		SelectedText: a.SelectedText,
		Properties:   a.Properties,
	})
	if err != nil {
		return nil, err
	}
	return AnnotationFromResponse(res), nil
}

func (b *annotationBackend) Update(ctx context.Context, a *entity.Annotation) (*entity.Annotation, error) {
	page := a.PageNumber
	color := string(a.Color)
	position := toPositionDTO(a.Position)
	properties := a.Properties
	if properties == nil {
		properties = map[string]interface{}{}
	}
	res, err := b.annotations.Update(ctx, b.userId, &dto.UpdateAnnotationRequest{
		Id:         a.Id,
		PageNumber: &page,
		Color:      &color,
		Position:   &position,
		Content:    a.Content,
		Properties: properties,
	})
	if err != nil {
		return nil, err
	}
	return AnnotationFromResponse(res), nil
}

func (b *annotationBackend) Delete(ctx context.Context, id uuid.UUID) error {
	return b.annotations.Delete(ctx, b.userId, id)
}

func toPositionDTO(p entity.Position) dto.PositionDTO {
	return dto.PositionDTO{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}
