package service

import (
	"context"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const permissionOwner = "owner"

// access is what one user may do with one annotation.
type access struct {
	owner      bool
	permission entity.SharePermission
}

func (a access) allows(required entity.SharePermission) bool {
	return a.owner || a.permission.Allows(required)
}

func (a access) label() string {
	if a.owner {
		return permissionOwner
	}
	return string(a.permission)
}

// loadAnnotation returns the annotation and the caller's access to it.
// Annotations the caller can't see are reported as missing.
func loadAnnotation(ctx context.Context, uow unitofwork.UnitOfWork, annotationId uuid.UUID, userId uuid.UUID) (*entity.Annotation, access, error) {
	annotation, err := uow.AnnotationRepository().FindOne(ctx, specification.ByID{ID: annotationId})
	if err != nil {
		return nil, access{}, err
	}
	if annotation == nil {
		return nil, access{}, dto.NotFound("annotation")
	}
	if annotation.UserId == userId {
		return annotation, access{owner: true}, nil
	}

	share, err := uow.AnnotationShareRepository().FindOne(ctx,
		specification.ByAnnotationID{AnnotationID: annotationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, access{}, err
	}
	if share == nil {
		return nil, access{}, dto.NotFound("annotation")
	}
	return annotation, access{permission: share.Permission}, nil
}

// requireAnnotation is loadAnnotation plus a minimum permission.
func requireAnnotation(ctx context.Context, uow unitofwork.UnitOfWork, annotationId uuid.UUID, userId uuid.UUID, required entity.SharePermission) (*entity.Annotation, access, error) {
	annotation, acc, err := loadAnnotation(ctx, uow, annotationId, userId)
	if err != nil {
		return nil, acc, err
	}
	if !acc.allows(required) {
		return nil, acc, dto.ErrForbidden
	}
	return annotation, acc, nil
}

// loadDocument returns the document and whether the caller owns it. Users
// holding a share on any annotation of the document may read it.
func loadDocument(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, userId uuid.UUID) (*entity.Document, bool, error) {
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, false, err
	}
	if document == nil {
		return nil, false, dto.NotFound("document")
	}
	if document.UserId == userId {
		return document, true, nil
	}

	shared, err := uow.AnnotationRepository().Count(ctx,
		specification.ByDocumentID{DocumentID: documentId},
		specification.VisibleTo{UserID: userId},
	)
	if err != nil {
		return nil, false, err
	}
	if shared == 0 {
		return nil, false, dto.NotFound("document")
	}
	return document, false, nil
}

// audience is the annotation owner followed by every grantee.
func audience(ctx context.Context, uow unitofwork.UnitOfWork, annotation *entity.Annotation) ([]uuid.UUID, error) {
	shares, err := uow.AnnotationShareRepository().FindAll(ctx, specification.ByAnnotationID{AnnotationID: annotation.Id})
	if err != nil {
		return nil, err
	}
	users := make([]uuid.UUID, 0, len(shares)+1)
	users = append(users, annotation.UserId)
	for _, share := range shares {
		users = append(users, share.UserId)
	}
	return users, nil
}

// audienceOrOwner falls back to the owner alone when grantees can't be
// loaded. Only event delivery depends on it.
func audienceOrOwner(ctx context.Context, uow unitofwork.UnitOfWork, annotation *entity.Annotation, log logger.ILogger) []uuid.UUID {
	users, err := audience(ctx, uow, annotation)
	if err != nil {
		log.Warn("EVENTS", "Failed to load annotation audience", map[string]interface{}{
			"annotation_id": annotation.Id.String(),
			"error":         err.Error(),
		})
		return []uuid.UUID{annotation.UserId}
	}
	return users
}

func toAnnotationResponse(a *entity.Annotation, acc access) *dto.AnnotationResponse {
	properties := a.Properties
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return &dto.AnnotationResponse{
		Id:         a.Id,
		DocumentId: a.DocumentId,
		UserId:     a.UserId,
		PageNumber: a.PageNumber,
		Type:       string(a.Type),
		Color:      string(a.Color),
		Position: dto.PositionDTO{
			X:      a.Position.X,
			Y:      a.Position.Y,
			Width:  a.Position.Width,
			Height: a.Position.Height,
		},
		Content:      a.Content,
		SelectedText: a.SelectedText,
		Properties:   properties,
		Permission:   acc.label(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AnnotationFromResponse turns an API representation back into an entity.
func AnnotationFromResponse(r *dto.AnnotationResponse) *entity.Annotation {
	return &entity.Annotation{
		Id:         r.Id,
		DocumentId: r.DocumentId,
		UserId:     r.UserId,
		PageNumber: r.PageNumber,
		Type:       entity.AnnotationType(r.Type),
		Color:      entity.AnnotationColor(r.Color),
		Position: entity.Position{
			X:      r.Position.X,
			Y:      r.Position.Y,
			Width:  r.Position.Width,
			Height: r.Position.Height,
		},
		Content:      r.Content,
		SelectedText: r.SelectedText,
		Properties:   r.Properties,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
