package library

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codesnap/snap"
	"codesnap/snapfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemorySQLite(t testing.TB, opts ...Option) *SQLite {
	t.Helper()
	l, err := OpenSQLite(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func titled(title string) *snap.Snap {
	s := snap.NewSnap()
	s.Meta.Title = title
	s.Elements = append(s.Elements, snap.NewCodeElement(0, 0), snap.NewTextElement(10, 10))
	return s
}

// stores runs every test against both implementations.
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": openMemorySQLite(t, WithPolicy(snapfile.Policy{MaxAssetBytes: 1024})),
		"memory": NewMemory(snapfile.Policy{MaxAssetBytes: 1024}),
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := titled("first")
			id, err := st.Save(ctx, "", s)
			require.NoError(t, err)
			require.NotEmpty(t, id)

			back, err := st.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, s, back)

			s.Meta.Title = "renamed"
			again, err := st.Save(ctx, id, s)
			require.NoError(t, err)
			assert.Equal(t, id, again)
			back, err = st.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "renamed", back.Meta.Title)
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a, err := st.Save(ctx, "", titled("a"))
			require.NoError(t, err)
			b, err := st.Save(ctx, "", titled("b"))
			require.NoError(t, err)

			list, err := st.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, b, list[0].ID)
			assert.Equal(t, a, list[1].ID)
			assert.Equal(t, "b", list[0].Title)
			assert.Equal(t, 2, list[0].Elements)
			assert.Equal(t, 1920, list[0].Width)
			assert.Positive(t, list[0].Size)
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			id, err := st.Save(ctx, "", titled("gone"))
			require.NoError(t, err)
			require.NoError(t, st.Delete(ctx, id))

			_, err = st.Load(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, st.Delete(ctx, id), ErrNotFound)

			list, err := st.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestSaveCapsAssets(t *testing.T) {
	ctx := context.Background()
	big := "data:image/png;base64," + strings.Repeat("A", 4000)
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := snap.NewSnap()
			s.Elements = append(s.Elements, snap.NewImageElement(0, 0, big, 10, 10))
			s.Background.Branding = &snap.Branding{Enabled: true, Avatar: big, ShowAvatar: true}

			id, err := st.Save(ctx, "", s)
			require.NoError(t, err)
			assert.Equal(t, big, s.Elements[0].Image.Src, "the caller's document is untouched")

			back, err := st.Load(ctx, id)
			require.NoError(t, err)
			assert.Empty(t, back.Elements[0].Image.Src)
			assert.False(t, back.Background.Branding.ShowAvatar)
		})
	}
}

func TestSQLiteFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "library.db")
	fixed := time.UnixMilli(1_700_000_000_000)

	l, err := OpenSQLite(path, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	id, err := l.Save(ctx, "", titled("kept"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = OpenSQLite(path)
	require.NoError(t, err)
	defer l.Close()
	list, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.True(t, fixed.Equal(list[0].UpdatedAt))
}

func TestSaveNil(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Save(context.Background(), "", nil)
			assert.Error(t, err)
		})
	}
}
