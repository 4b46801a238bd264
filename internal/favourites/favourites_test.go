package favourites_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/api"
	"github.com/shashiranjanraj/storefront/internal/favourites"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notify"
	"github.com/shashiranjanraj/storefront/pkg/store"
)

var lamp = api.Product{ID: 3, Name: "Lamp", Price: decimal.NewFromInt(20)}

func TestAddDedupesAndPersists(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	l := favourites.New(ctx, s, notify.Discard{}, logger.Discard())

	l.Add(ctx, lamp)
	l.Add(ctx, lamp)
	assert.Len(t, l.Products(), 1)
	assert.True(t, l.Has(lamp.ID))

	reloaded := favourites.New(ctx, s, nil, logger.Discard())
	require.Len(t, reloaded.Products(), 1)
	assert.Equal(t, "Lamp", reloaded.Products()[0].Name)
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	l := favourites.New(ctx, store.NewMemory(), nil, logger.Discard())

	assert.True(t, l.Toggle(ctx, lamp))
	assert.False(t, l.Toggle(ctx, lamp))
	assert.False(t, l.Has(lamp.ID))

	l.Remove(ctx, 99)
	assert.Empty(t, l.Products())
}

func TestCorruptListIsEmpty(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, favourites.Key, []byte("nope")))

	l := favourites.New(ctx, s, nil, logger.Discard())
	assert.Empty(t, l.Products())
}

type failingStore struct{ *store.Memory }

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type recorder struct{ types []notify.Type }

func (r *recorder) Notify(_ string, typ notify.Type) { r.types = append(r.types, typ) }

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l := favourites.New(ctx, failingStore{store.NewMemory()}, rec, logger.Discard())

	l.Add(ctx, lamp)
	assert.True(t, l.Has(lamp.ID))
	assert.Equal(t, []notify.Type{notify.Success}, rec.types)

	l.Remove(ctx, lamp.ID)
	assert.False(t, l.Has(lamp.ID))
	assert.Len(t, rec.types, 1)
}
