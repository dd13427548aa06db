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

func TestShareGrantsAndRegrants(t *testing.T) {
	f := newFixture()
	shares := NewShareService(f.factory, f.usage, f.events, f.log)
	a := f.seedAnnotation(1)
	colleague := uuid.New()
	ctx := context.Background()

	first, err := shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: colleague, Permission: "view"})
	require.NoError(t, err)
	assert.Equal(t, "view", first.Permission)
	assert.Equal(t, f.owner, first.GrantedBy)

	second, err := shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: colleague, Permission: "edit"})
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id, "granting again updates the existing share")
	assert.Equal(t, "edit", second.Permission)
	require.Len(t, f.store.shares, 1)

	granted := f.events.ofType(events.ShareGranted)
	require.Len(t, granted, 2)
	assert.ElementsMatch(t, []uuid.UUID{f.owner, colleague}, granted[1].UUIDs(events.KeyAudience))

	res, err := f.annotator.Show(ctx, colleague, a.Id)
	require.NoError(t, err)
	assert.Equal(t, "edit", res.Permission)
}

func TestShareRules(t *testing.T) {
	f := newFixture()
	shares := NewShareService(f.factory, f.usage, f.events, f.log)
	a := f.seedAnnotation(1)
	editor := uuid.New()
	f.share(a.Id, editor, entity.SharePermissionEdit)
	ctx := context.Background()

	_, err := shares.Share(ctx, editor, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: uuid.New(), Permission: "view"})
	assert.ErrorIs(t, err, dto.ErrForbidden, "only the owner shares")

	_, err = shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: f.owner, Permission: "view"})
	var verr *dto.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "user_id", verr.Field)

	_, err = shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: uuid.New(), Permission: "admin"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "permission", verr.Field)
}

func TestShareCollaboratorLimit(t *testing.T) {
	f := newFixture()
	shares := NewShareService(f.factory, f.usage, f.events, f.log)
	a := f.seedAnnotation(1)
	ctx := context.Background()

	// The free plan allows two collaborators.
	first, second := uuid.New(), uuid.New()
	for _, u := range []uuid.UUID{first, second} {
		_, err := shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: u, Permission: "view"})
		require.NoError(t, err)
	}

	_, err := shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: uuid.New(), Permission: "view"})
	var limitErr *dto.LimitExceededError
	require.True(t, errors.As(err, &limitErr), "got %v", err)
	assert.Equal(t, "collaborator", limitErr.Resource)

	_, err = shares.Share(ctx, f.owner, &dto.ShareAnnotationRequest{AnnotationId: a.Id, UserId: second, Permission: "comment"})
	assert.NoError(t, err, "changing an existing grant is not a new collaborator")
}

func TestListShares(t *testing.T) {
	f := newFixture()
	shares := NewShareService(f.factory, f.usage, f.events, f.log)
	a := f.seedAnnotation(1)
	first, second := uuid.New(), uuid.New()
	f.share(a.Id, first, entity.SharePermissionView)
	f.share(a.Id, second, entity.SharePermissionComment)

	all, err := shares.List(context.Background(), f.owner, a.Id)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := shares.List(context.Background(), second, a.Id)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, second, own[0].UserId)
}

func TestRevokeShare(t *testing.T) {
	f := newFixture()
	shares := NewShareService(f.factory, f.usage, f.events, f.log)
	a := f.seedAnnotation(1)
	first, second := uuid.New(), uuid.New()
	f.share(a.Id, first, entity.SharePermissionEdit)
	f.share(a.Id, second, entity.SharePermissionView)
	ctx := context.Background()

	assert.ErrorIs(t, shares.Revoke(ctx, first, a.Id, second), dto.ErrForbidden)

	require.NoError(t, shares.Revoke(ctx, second, a.Id, second), "grantees may leave")
	require.NoError(t, shares.Revoke(ctx, f.owner, a.Id, first))
	assert.Empty(t, f.store.shares)

	revoked := f.events.ofType(events.ShareRevoked)
	require.Len(t, revoked, 2)
	assert.Contains(t, revoked[1].UUIDs(events.KeyAudience), first)

	assert.ErrorIs(t, shares.Revoke(ctx, f.owner, a.Id, first), dto.ErrNotFound)
	_, err := f.annotator.Show(ctx, first, a.Id)
	assert.ErrorIs(t, err, dto.ErrNotFound)
}
