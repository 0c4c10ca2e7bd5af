package survey

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nashtech/odmat/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st.SurveyRepo(), nil)
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateDefaultsToDraft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sv, err := svc.Create(ctx, 1, Request{Title: ptr("Staff survey"), Status: ptr("nonsense")})
	require.NoError(t, err)
	assert.NotZero(t, sv.ID)
	assert.Equal(t, StatusDraft, sv.Status)
	assert.Nil(t, sv.Schema)

	sv, err = svc.Create(ctx, 1, Request{Title: ptr("Live"), Status: ptr("Active")})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sv.Status)
}

func TestService_CreateValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, Request{Title: ptr("  ")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Create(ctx, 1, Request{Title: ptr("x"), Schema: []byte(`{"pages":"no"}`)})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestService_OwnershipIsEnforced(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sv, err := svc.Create(ctx, 1, Request{Title: ptr("Mine")})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, sv.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, 2, sv.ID, Request{Title: ptr("Theirs")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, 2, sv.ID), ErrForbidden)

	_, err = svc.Get(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_UpdateKeepsUnsetFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sv, err := svc.Create(ctx, 1, Request{Title: ptr("Before"), Description: ptr("desc"), Status: ptr("ACTIVE")})
	require.NoError(t, err)

	got, err := svc.Update(ctx, 1, sv.ID, Request{Title: ptr("After"), Status: ptr("bad")})
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, StatusActive, got.Status)

	got, err = svc.Get(ctx, 1, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
}

func TestService_EditStoresBuilderSchema(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sv, err := svc.Create(ctx, 1, Request{Title: ptr("Builder")})
	require.NoError(t, err)

	var added Element
	got, err := svc.Edit(ctx, 1, sv.ID, func(b *Builder) error {
		var err error
		added, err = b.Add(TypeRadioGroup, -1)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, got.Schema)
	require.Len(t, got.Schema.Elements(), 1)

	got, err = svc.Edit(ctx, 1, sv.ID, func(b *Builder) error {
		_, err := b.AddChoice(added.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Option 1", "Option 2", "Option 3"}, got.Schema.Elements()[0].Choices)

	_, err = svc.Edit(ctx, 1, sv.ID, func(b *Builder) error { return b.Remove("missing") })
	assert.ErrorIs(t, err, ErrElementNotFound)

	stored, err := svc.Get(ctx, 1, sv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Schema.Elements(), 1, "a failed edit stores nothing")
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sv, err := svc.Create(ctx, 1, Request{Title: ptr("Gone")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, sv.ID))
	_, err = svc.Get(ctx, 1, sv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
