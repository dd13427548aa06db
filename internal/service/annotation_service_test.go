package service

import (
	"context"
	"errors"
	"testing"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAnnotation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.annotator.Create(ctx, f.owner, highlightRequest(f.document.Id))
	require.NoError(t, err)

	assert.Equal(t, f.owner, res.UserId)
	assert.Equal(t, "owner", res.Permission)
	assert.Equal(t, dto.PositionDTO{X: 100, Y: 100, Width: 120, Height: 14}, res.Position)
	assert.NotNil(t, res.Properties)
	require.Len(t, f.store.annotations, 1)
	assert.Equal(t, 1, f.jobs.count())

	created := f.events.ofType(events.AnnotationCreated)
	require.Len(t, created, 1)
	id, ok := created[0].UUID(events.KeyAnnotationId)
	require.True(t, ok)
	assert.Equal(t, res.Id, id)
	assert.Equal(t, []uuid.UUID{f.owner}, created[0].UUIDs(events.KeyAudience))
}

func TestCreateAnnotationKeepsClientId(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id := uuid.New()
	req := highlightRequest(f.document.Id)
	req.Id = &id

	res, err := f.annotator.Create(ctx, f.owner, req)
	require.NoError(t, err)
	assert.Equal(t, id, res.Id)

	_, err = f.annotator.Create(ctx, f.owner, req)
	assert.ErrorIs(t, err, dto.ErrConflict)
	assert.Len(t, f.store.annotations, 1)
}

func TestCreateAnnotationRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.CreateAnnotationRequest)
		field  string
	}{
		{"page beyond document", func(r *dto.CreateAnnotationRequest) { r.PageNumber = 4 }, "page_number"},
		{"unknown color", func(r *dto.CreateAnnotationRequest) { r.Color = "teal" }, "color"},
		{"too small", func(r *dto.CreateAnnotationRequest) { r.Position.Height = 2 }, "position"},
		{"outside page", func(r *dto.CreateAnnotationRequest) { r.Position.X = 600 }, "position"},
		{"drawing without path", func(r *dto.CreateAnnotationRequest) {
			r.Type = string(entity.AnnotationTypeDrawing)
		}, "properties.path"},
		{"bad stamp kind", func(r *dto.CreateAnnotationRequest) {
			r.Type = string(entity.AnnotationTypeStamp)
			r.Properties = map[string]interface{}{entity.PropertyStampKind: "void"}
		}, "properties.stamp_kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := highlightRequest(f.document.Id)
			tt.mutate(req)

			_, err := f.annotator.Create(context.Background(), f.owner, req)
			var verr *dto.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.store.annotations)
		})
	}
}

func TestCreateAnnotationRequiresDocumentOwner(t *testing.T) {
	f := newFixture()
	stranger := uuid.New()

	_, err := f.annotator.Create(context.Background(), stranger, highlightRequest(f.document.Id))
	assert.ErrorIs(t, err, dto.ErrNotFound)

	a := f.seedAnnotation(1)
	f.share(a.Id, stranger, entity.SharePermissionEdit)
	_, err = f.annotator.Create(context.Background(), stranger, highlightRequest(f.document.Id))
	assert.ErrorIs(t, err, dto.ErrForbidden)
}

func TestCreateAnnotationEnforcesPerDocumentLimit(t *testing.T) {
	f := newFixture()
	f.subscribe(f.owner, entity.SubscriptionPlan{Slug: "tiny", MaxAnnotationsPerDocument: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.annotator.Create(ctx, f.owner, highlightRequest(f.document.Id))
		require.NoError(t, err)
	}

	_, err := f.annotator.Create(ctx, f.owner, highlightRequest(f.document.Id))
	var limitErr *dto.LimitExceededError
	require.True(t, errors.As(err, &limitErr), "got %v", err)
	assert.Equal(t, 2, limitErr.Limit)
	assert.Equal(t, 2, limitErr.Used)
	assert.Len(t, f.store.annotations, 2)
}

func TestCreateAnnotationSurfacesStoreFailure(t *testing.T) {
	f := newFixture()
	f.store.fail["annotation.create"] = errors.New("connection reset")

	_, err := f.annotator.Create(context.Background(), f.owner, highlightRequest(f.document.Id))
	assert.EqualError(t, err, "connection reset")
	assert.Zero(t, f.jobs.count())
	assert.Empty(t, f.events.ofType(events.AnnotationCreated))
}

func TestShowHidesUnsharedAnnotations(t *testing.T) {
	f := newFixture()
	a := f.seedAnnotation(1)
	viewer := uuid.New()

	_, err := f.annotator.Show(context.Background(), viewer, a.Id)
	assert.ErrorIs(t, err, dto.ErrNotFound)

	f.share(a.Id, viewer, entity.SharePermissionComment)
	res, err := f.annotator.Show(context.Background(), viewer, a.Id)
	require.NoError(t, err)
	assert.Equal(t, "comment", res.Permission)
}

func TestUpdateAnnotation(t *testing.T) {
	f := newFixture()
	a := f.seedAnnotation(1)
	editor := uuid.New()
	f.share(a.Id, editor, entity.SharePermissionEdit)
	ctx := context.Background()

	color := string(entity.ColorBlue)
	res, err := f.annotator.Update(ctx, editor, &dto.UpdateAnnotationRequest{Id: a.Id, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, res.Color)
	assert.Equal(t, "edit", res.Permission)
	assert.NotNil(t, res.UpdatedAt)
	assert.Zero(t, f.jobs.count(), "color change does not touch search text")

	updated := f.events.ofType(events.AnnotationUpdated)
	require.Len(t, updated, 1)
	assert.ElementsMatch(t, []uuid.UUID{f.owner, editor}, updated[0].UUIDs(events.KeyAudience))

	content := "renewal clause"
	_, err = f.annotator.Update(ctx, f.owner, &dto.UpdateAnnotationRequest{Id: a.Id, Content: &content})
	require.NoError(t, err)
	assert.Equal(t, 1, f.jobs.count())
	assert.Equal(t, content, *f.store.annotations[0].Content)
}

func TestUpdateAnnotationPermissions(t *testing.T) {
	f := newFixture()
	a := f.seedAnnotation(1)
	commenter := uuid.New()
	f.share(a.Id, commenter, entity.SharePermissionComment)

	color := string(entity.ColorRed)
	_, err := f.annotator.Update(context.Background(), commenter, &dto.UpdateAnnotationRequest{Id: a.Id, Color: &color})
	assert.ErrorIs(t, err, dto.ErrForbidden)
	assert.Equal(t, entity.ColorYellow, f.store.annotations[0].Color)

	_, err = f.annotator.Update(context.Background(), uuid.New(), &dto.UpdateAnnotationRequest{Id: a.Id, Color: &color})
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestUpdateAnnotationValidatesResult(t *testing.T) {
	f := newFixture()
	a := f.seedAnnotation(1)

	page := 9
	_, err := f.annotator.Update(context.Background(), f.owner, &dto.UpdateAnnotationRequest{Id: a.Id, PageNumber: &page})
	var verr *dto.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, f.store.annotations[0].PageNumber)
}

func TestDeleteAnnotationCascades(t *testing.T) {
	f := newFixture()
	a := f.seedAnnotation(1)
	other := f.seedAnnotation(2)
	grantee := uuid.New()
	f.share(a.Id, grantee, entity.SharePermissionView)
	f.share(other.Id, grantee, entity.SharePermissionView)
	f.store.comments = append(f.store.comments,
		&entity.AnnotationComment{Id: uuid.New(), AnnotationId: a.Id, UserId: f.owner, Content: "x"},
		&entity.AnnotationComment{Id: uuid.New(), AnnotationId: other.Id, UserId: f.owner, Content: "y"},
	)
	f.store.embeddings = append(f.store.embeddings, &entity.AnnotationEmbedding{Id: uuid.New(), AnnotationId: a.Id})

	require.NoError(t, f.annotator.Delete(context.Background(), f.owner, a.Id))

	require.Len(t, f.store.annotations, 1)
	assert.Equal(t, other.Id, f.store.annotations[0].Id)
	require.Len(t, f.store.comments, 1)
	assert.Equal(t, other.Id, f.store.comments[0].AnnotationId)
	require.Len(t, f.store.shares, 1)
	assert.Equal(t, other.Id, f.store.shares[0].AnnotationId)
	assert.Empty(t, f.store.embeddings)
	assert.Equal(t, 1, f.store.commits)

	deleted := f.events.ofType(events.AnnotationDeleted)
	require.Len(t, deleted, 1)
	assert.ElementsMatch(t, []uuid.UUID{f.owner, grantee}, deleted[0].UUIDs(events.KeyAudience))
}

func TestDeleteAnnotationRollsBackOnFailure(t *testing.T) {
	f := newFixture()
	a := f.seedAnnotation(1)
	f.store.fail["annotation.delete"] = errors.New("deadlock detected")

	err := f.annotator.Delete(context.Background(), f.owner, a.Id)
	assert.EqualError(t, err, "deadlock detected")
	assert.Zero(t, f.store.commits)
	assert.Empty(t, f.events.ofType(events.AnnotationDeleted))
}

func TestListByDocument(t *testing.T) {
	f := newFixture()
	f.seedAnnotation(1)
	second := f.seedAnnotation(2)
	second.Color = entity.ColorGreen
	f.seedAnnotation(2)
	reader := uuid.New()
	f.share(second.Id, reader, entity.SharePermissionView)
	ctx := context.Background()

	all, err := f.annotator.ListByDocument(ctx, f.owner, &dto.ListAnnotationsRequest{DocumentId: f.document.Id})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page := 2
	onPage, err := f.annotator.ListByDocument(ctx, f.owner, &dto.ListAnnotationsRequest{DocumentId: f.document.Id, PageNumber: &page, Color: "green"})
	require.NoError(t, err)
	require.Len(t, onPage, 1)
	assert.Equal(t, second.Id, onPage[0].Id)

	shared, err := f.annotator.ListByDocument(ctx, reader, &dto.ListAnnotationsRequest{DocumentId: f.document.Id})
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, second.Id, shared[0].Id)
	assert.Equal(t, "view", shared[0].Permission)

	mine, err := f.annotator.ListByDocument(ctx, reader, &dto.ListAnnotationsRequest{DocumentId: f.document.Id, Mine: true})
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = f.annotator.ListByDocument(ctx, uuid.New(), &dto.ListAnnotationsRequest{DocumentId: f.document.Id})
	assert.ErrorIs(t, err, dto.ErrNotFound)
}
