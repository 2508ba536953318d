package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
)

func newTestStore(t *testing.T) *Local {
	t.Helper()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewLocalCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store, err := NewLocal(dir)
	require.NoError(t, err)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = os.Stat(store.ImagesDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSanitizeNamePart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 Main St", "123 Main St"},
		{"1 Main St, Springfield, IL 62704", "1 Main St Springfield IL 62704"},
		{"a/b\\c", "abc"},
		{"odd!@#$%chars", "oddchars"},
		{"under_score-dash", "under_score-dash"},
		{"   padded   ", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeNamePart(tt.in), "input %q", tt.in)
	}
}

func TestAllocateName(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("with key part", func(t *testing.T) {
		name := store.AllocateName(domain.PropertyReportPrefix, "1 Main St, Springfield", ts)
		assert.Equal(t, "Property_Report_1 Main St Springfield_20260314_092653.docx", name)
	})

	t.Run("without key part", func(t *testing.T) {
		name := store.AllocateName(domain.CompReportPrefix, "", ts)
		assert.Equal(t, "Report_with_Comps_20260314_092653.docx", name)
	})

	t.Run("collision appends token", func(t *testing.T) {
		first := store.AllocateName(domain.CompReportPrefix, "", ts)
		require.NoError(t, os.WriteFile(store.Path(first), []byte("x"), 0o644))

		second := store.AllocateName(domain.CompReportPrefix, "", ts)
		assert.NotEqual(t, first, second)
		assert.True(t, strings.HasPrefix(second, "Report_with_Comps_20260314_092653_"))
		assert.True(t, strings.HasSuffix(second, ".docx"))
	})
}

func TestListFiltersAndOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	write := func(name string, age time.Duration) {
		path := store.Path(name)
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
		mod := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	write("older.docx", 2*time.Hour)
	write("newest.docx", 0)
	write("middle.docx", time.Hour)
	write("notes.txt", 0)

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3, "only .docx files are listed, images dir is skipped")

	assert.Equal(t, "newest.docx", files[0].Filename)
	assert.Equal(t, "middle.docx", files[1].Filename)
	assert.Equal(t, "older.docx", files[2].Filename)
	assert.Equal(t, int64(7), files[0].SizeBytes)
	assert.False(t, files[0].Modified.IsZero())
}

func TestOpen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content := []byte("docx bytes")
	require.NoError(t, os.WriteFile(store.Path("report.docx"), content, 0o644))

	t.Run("returns file contents", func(t *testing.T) {
		info, rc, err := store.Open(ctx, "report.docx")
		require.NoError(t, err)
		defer rc.Close()

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, "report.docx", info.Filename)
		assert.Equal(t, int64(len(content)), info.SizeBytes)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := store.Open(ctx, "nope.docx")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("traversal names are absent", func(t *testing.T) {
		for _, name := range []string{
			"../report.docx",
			"..",
			"images/../report.docx",
			"/etc/passwd",
			".hidden.docx",
			"",
		} {
			_, _, err := store.Open(ctx, name)
			assert.ErrorIs(t, err, domain.ErrNotFound, "name %q", name)
		}
	})
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(store.Path("gone.docx"), []byte("x"), 0o644))

	require.NoError(t, store.Delete(ctx, "gone.docx"))
	_, err := os.Stat(store.Path("gone.docx"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Delete(ctx, "gone.docx"), domain.ErrNotFound, "repeat delete")
	assert.ErrorIs(t, store.Delete(ctx, "../outside.docx"), domain.ErrNotFound)
}
