package service

import (
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"codeshare-backend/internal/blob"
	"codeshare-backend/internal/models"
	"codeshare-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingDeleteStore wraps a blob.Store and fails every Delete.
type failingDeleteStore struct {
	blob.Store
	deletes int
}

func (f *failingDeleteStore) Delete(ctx context.Context, key string) error {
	f.deletes++
	return errors.New("disk on fire")
}

type fixture struct {
	store *repository.InMemoryStore
	blobs *blob.DiskStore
	dir   string
	files *FileService
	alice *models.User
	bob   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewInMemoryStore()
	dir := t.TempDir()
	blobs, err := blob.NewDiskStore(dir)
	require.NoError(t, err)

	users := NewUserService(store, nil)
	alice, err := users.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "bob", "pw2")
	require.NoError(t, err)

	return &fixture{
		store: store,
		blobs: blobs,
		dir:   dir,
		files: NewFileService(store, blobs),
		alice: alice,
		bob:   bob,
	}
}

func (f *fixture) upload(t *testing.T, owner *models.User, name, content string) *models.File {
	t.Helper()
	file, err := f.files.Upload(context.Background(), owner.ID, name, strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	return file
}

func TestRandomCodeIsSixDigits(t *testing.T) {
	re := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 200; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestStoredName(t *testing.T) {
	a := StoredName("a.txt")
	b := StoredName("a.txt")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-a.txt"))

	assert.True(t, strings.HasSuffix(StoredName("../../etc/passwd"), "-passwd"))
	assert.True(t, strings.HasSuffix(StoredName(`C:\docs\report.pdf`), "-report.pdf"))
	assert.True(t, strings.HasSuffix(StoredName(".."), "-file"))

	long := StoredName(strings.Repeat("n", 300) + ".txt")
	assert.LessOrEqual(t, len(long), 255)
	assert.True(t, strings.HasSuffix(long, "n.txt"))
}

func TestTruncateNameKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short name untouched", "a.txt", 10, "a.txt"},
		{"keeps extension", "abcdefgh.txt", 8, "abcd.txt"},
		{"drops long extension", "a." + strings.Repeat("x", 20), 5, "a.xxx"},
		{"no split multibyte", "ééé.md", 6, "é.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateName(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}

func TestUploadLongFileName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	name := strings.Repeat("n", 230) + ".txt"

	file := f.upload(t, f.alice, name, "hello")
	assert.Equal(t, name, file.OriginalName)
	assert.LessOrEqual(t, len(file.StoredName), 255)

	_, rc, err := f.files.Open(ctx, file.Code)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestUploadListAndFindByCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.upload(t, f.alice, "a.txt", "hello")
	assert.Equal(t, f.alice.ID, file.OwnerID)
	assert.Equal(t, "a.txt", file.OriginalName)
	assert.Len(t, file.Code, 6)

	files, err := f.files.ListByOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].OriginalName)

	found, err := f.files.FindByCode(ctx, file.Code)
	require.NoError(t, err)
	assert.Equal(t, file.ID, found.ID)

	_, err = f.files.FindByCode(ctx, "000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenIsCrossUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.upload(t, f.alice, "a.txt", "hello")

	// bob only needs the code
	got, rc, err := f.files.Open(ctx, file.Code)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "a.txt", got.OriginalName)
}

func TestOpenMissingBlob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.upload(t, f.alice, "a.txt", "hello")
	require.NoError(t, f.blobs.Delete(ctx, file.StoredName))

	_, _, err := f.files.Open(ctx, file.Code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOwned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.upload(t, f.alice, "a.txt", "hello")

	err := f.files.DeleteOwned(ctx, f.bob.ID, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.files.DeleteOwned(ctx, f.alice.ID, file.ID))

	files, err := f.files.ListByOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = f.blobs.Open(ctx, file.StoredName)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	assert.ErrorIs(t, f.files.DeleteOwned(ctx, f.alice.ID, file.ID), ErrNotFound)
	assert.ErrorIs(t, f.files.DeleteOwned(ctx, f.alice.ID, uuid.New()), ErrNotFound)
}

func TestDeleteOwnedSwallowsBlobFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.upload(t, f.alice, "a.txt", "hello")

	failing := &failingDeleteStore{Store: f.blobs}
	svc := NewFileService(f.store, failing)

	require.NoError(t, svc.DeleteOwned(ctx, f.alice.ID, file.ID))
	assert.Equal(t, 1, failing.deletes)

	files, err := svc.ListByOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStoreRequiresExistingOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.files.Store(context.Background(), uuid.New(), "a.txt", StoredName("a.txt"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUploadRemovesBlobWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.files.Upload(ctx, uuid.New(), "a.txt", strings.NewReader("x"), 1)
	require.ErrorIs(t, err, ErrUserNotFound)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.files.Upload(context.Background(), f.alice.ID, "  ", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGenerateCodeRedrawsOnCollision(t *testing.T) {
	f := newFixture(t)

	codes := []string{"123456", "123456", "654321"}
	f.files.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first := f.upload(t, f.alice, "a.txt", "a")
	second := f.upload(t, f.bob, "b.txt", "b")

	assert.Equal(t, "123456", first.Code)
	assert.Equal(t, "654321", second.Code)
}

func TestGenerateCodeAcceptsCollisionAfterRetries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.files.newCode = func() (string, error) { return "111111", nil }

	first := f.upload(t, f.alice, "a.txt", "a")
	time.Sleep(time.Millisecond)
	second := f.upload(t, f.bob, "b.txt", "b")
	assert.Equal(t, first.Code, second.Code)

	// ambiguous codes resolve to the newest record
	found, err := f.files.FindByCode(ctx, "111111")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
}
