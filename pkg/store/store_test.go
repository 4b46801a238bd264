package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// exerciseStore runs the behaviour every driver must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SetString(ctx, s, "token", "abc.def"))
	tok, err := GetString(ctx, s, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	items := []lineItem{{ID: 1, Name: "Kettle", Quantity: 2}, {ID: 2, Name: "Mug", Quantity: 1}}
	require.NoError(t, SetJSON(ctx, s, "cart", items))
	var back []lineItem
	require.NoError(t, GetJSON(ctx, s, "cart", &back))
	assert.Equal(t, items, back)

	require.NoError(t, SetJSON(ctx, s, "cart", items[:1]))
	require.NoError(t, GetJSON(ctx, s, "cart", &back))
	assert.Len(t, back, 1)

	require.NoError(t, s.Set(ctx, "cart", []byte("{not json")))
	err = GetJSON(ctx, s, "cart", &back)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Remove(ctx, "token"))
	require.NoError(t, s.Remove(ctx, "token"))
	_, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("light")
	require.NoError(t, m.Set(context.Background(), "theme", buf))
	buf[0] = 'n'

	v, err := m.Get(context.Background(), "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", string(v))
}

func TestFileStore(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, f)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, SetString(context.Background(), f, "../escape", "x"))
	matches, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	assert.Len(t, matches, 1)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer r.Close()

	exerciseStore(t, r)

	require.NoError(t, SetString(context.Background(), r, "theme", "dark"))
	got, err := mr.Get("storefront:theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
}

func TestDialRedisFailsFast(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := DialRedis(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
}

func TestSQLStore(t *testing.T) {
	s, err := OpenSQL("sqlite", filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQL("oracle", "")
	assert.Error(t, err)
}

func TestInstrumentedStoreIsConcurrencySafe(t *testing.T) {
	s := Instrument(NewMemory())
	assert.Same(t, s, Instrument(s))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = SetString(context.Background(), s, "theme", "dark")
			_, _ = s.Get(context.Background(), "theme")
		}()
	}
	wg.Wait()

	v, err := GetString(context.Background(), s, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
	assert.NoError(t, Close(s))
}
