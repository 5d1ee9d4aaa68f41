package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	pkgerrors "github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/errors"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage/local"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func newLocalStore(t *testing.T) *local.Store {
	t.Helper()
	store, err := local.New(config.StorageConfig{LocalRoot: t.TempDir(), PublicBaseURL: "/uploads"})
	require.NoError(t, err)
	return store
}

func stage(t *testing.T, store *local.Store, stagingID, name, body string) storage.Object {
	t.Helper()
	obj, err := store.Save(context.Background(), strings.NewReader(body), storage.StagingDir(stagingID)+"/"+name, "image/jpeg")
	require.NoError(t, err)
	return obj
}

func TestRelocateStagedMovesFilesAndRemovesArea(t *testing.T) {
	store := newLocalStore(t)
	stagingID := uuid.NewString()
	obj := stage(t, store, stagingID, "photo1.jpg", "jpeg-bytes")

	relocator, err := NewRelocator(store, nil, nil)
	require.NoError(t, err)

	result := relocator.RelocateStaged(context.Background(), []string{stagingID}, "cafe-de-la-place")
	require.NoError(t, result.Err)
	require.Len(t, result.Moved, 1)

	moved := filepath.Join(store.Root(), "places", "cafe-de-la-place", "photo1.jpg")
	data, err := os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = os.Stat(filepath.Join(store.Root(), "staging", stagingID))
	assert.True(t, os.IsNotExist(err), "staged area should be removed")

	assert.Equal(t, "/uploads/places/cafe-de-la-place/photo1.jpg", result.RewriteURL(obj.URL))
	assert.Equal(t, "https://cdn.example/x.jpg", result.RewriteURL("https://cdn.example/x.jpg"))
}

func TestRelocateStagedSkipsUnknownAndEmptyAreas(t *testing.T) {
	store := newLocalStore(t)
	relocator, err := NewRelocator(store, nil, nil)
	require.NoError(t, err)

	result := relocator.RelocateStaged(context.Background(), []string{uuid.NewString(), "", "  "}, "le-bistrot")
	assert.NoError(t, result.Err)
	assert.Empty(t, result.Moved)
}

func TestRelocateStagedRejectsInvalidStagingID(t *testing.T) {
	store := newLocalStore(t)
	relocator, err := NewRelocator(store, nil, nil)
	require.NoError(t, err)

	result := relocator.RelocateStaged(context.Background(), []string{"../etc"}, "le-bistrot")
	require.Error(t, result.Err)
	assert.True(t, pkgerrors.IsCode(result.Err, pkgerrors.CodeStorage))
	assert.Len(t, result.Warnings(), 1)
}

type flakyStore struct {
	storage.Store
	failMove string
	removed  []string
}

func (f *flakyStore) Move(ctx context.Context, from, to string) error {
	if strings.HasSuffix(from, f.failMove) {
		return errors.New("disk full")
	}
	return f.Store.Move(ctx, from, to)
}

func (f *flakyStore) RemoveDir(ctx context.Context, dir string) error {
	f.removed = append(f.removed, dir)
	return f.Store.RemoveDir(ctx, dir)
}

func TestRelocateStagedPartialFailureKeepsArea(t *testing.T) {
	base := newLocalStore(t)
	stagingID := uuid.NewString()
	okObj := stage(t, base, stagingID, "a.jpg", "a")
	badObj := stage(t, base, stagingID, "b.jpg", "b")

	store := &flakyStore{Store: base, failMove: "b.jpg"}
	relocator, err := NewRelocator(store, nil, nil)
	require.NoError(t, err)

	result := relocator.RelocateStaged(context.Background(), []string{stagingID}, "chez-marcel")
	require.Error(t, result.Err)
	assert.Len(t, multierr.Errors(result.Err), 1)
	assert.Len(t, result.Moved, 1)
	assert.Empty(t, store.removed, "area with unmoved files must not be removed")

	assert.Equal(t, "/uploads/places/chez-marcel/a.jpg", result.RewriteURL(okObj.URL))
	assert.Equal(t, badObj.URL, result.RewriteURL(badObj.URL))

	_, err = os.Stat(filepath.Join(base.Root(), "staging", stagingID, "b.jpg"))
	assert.NoError(t, err)
}

func TestRetargetMovesRelocatedFiles(t *testing.T) {
	store := newLocalStore(t)
	stagingID := uuid.NewString()
	obj := stage(t, store, stagingID, "photo.jpg", "p")
	_, err := store.Save(context.Background(), strings.NewReader("w"), "places/la-poste/logo.png", "image/png")
	require.NoError(t, err)

	relocator, err := NewRelocator(store, nil, nil)
	require.NoError(t, err)

	first := relocator.RelocateStaged(context.Background(), []string{stagingID}, "la-poste")
	require.NoError(t, first.Err)

	second := relocator.Retarget(context.Background(), first, "la-poste-1")
	require.NoError(t, second.Err)
	assert.Equal(t, "/uploads/places/la-poste-1/photo.jpg", second.RewriteURL(obj.URL))

	_, err = os.Stat(filepath.Join(store.Root(), "places", "la-poste-1", "photo.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.Root(), "places", "la-poste", "photo.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.Root(), "places", "la-poste", "logo.png"))
	assert.NoError(t, err, "files of the place owning the old slug are kept")
}

func TestRestoreMovesFilesBackToStaging(t *testing.T) {
	store := newLocalStore(t)
	stagingID := uuid.NewString()
	stage(t, store, stagingID, "photo.jpg", "p")

	relocator, err := NewRelocator(store, nil, nil)
	require.NoError(t, err)

	rel := relocator.RelocateStaged(context.Background(), []string{stagingID}, "le-moulin")
	require.NoError(t, rel.Err)
	require.NoError(t, relocator.Restore(context.Background(), rel))

	_, err = os.Stat(filepath.Join(store.Root(), "staging", stagingID, "photo.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.Root(), "places", "le-moulin", "photo.jpg"))
	assert.True(t, os.IsNotExist(err))

	again := relocator.RelocateStaged(context.Background(), []string{stagingID}, "le-moulin")
	require.NoError(t, again.Err)
	assert.Len(t, again.Moved, 1)
}

func TestRewriteURLMatchesWholeFileNames(t *testing.T) {
	rel := Relocation{Moved: []MovedFile{{From: "staging/x/a.jpg", To: "places/s/a.jpg"}}}

	assert.Equal(t, "/uploads/places/s/a.jpg?v=2", rel.RewriteURL("/uploads/staging/x/a.jpg?v=2"))
	assert.Equal(t, "/uploads/staging/x/a.jpg.bak", rel.RewriteURL("/uploads/staging/x/a.jpg.bak"))
	assert.Nil(t, rel.RewritePtr(nil))
	assert.Equal(t, []string{"/uploads/places/s/a.jpg", "other"}, rel.RewriteAll([]string{"/uploads/staging/x/a.jpg", "other"}))
}

func TestExtractStagingIDs(t *testing.T) {
	a := uuid.NewString()
	b := strings.ToUpper(uuid.NewString())

	ids := ExtractStagingIDs(
		"/uploads/staging/"+a+"/one.jpg",
		"https://storage.googleapis.com/bucket/staging/"+b+"/two.jpg",
		"/uploads/staging/"+a+"/three.jpg",
		"/uploads/places/x/four.jpg",
		"/uploads/staging/not-a-uuid/five.jpg",
	)

	assert.Equal(t, []string{a, strings.ToLower(b)}, ids)
}
