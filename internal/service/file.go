package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"codeshare-backend/internal/blob"
	"codeshare-backend/internal/models"
	"codeshare-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	codeMin = 100000
	codeMax = 999999
	// codeAttempts bounds redraws when a code is already taken. The check is
	// not atomic with the insert, so codes are still not guaranteed unique.
	codeAttempts = 5

	// maxNameBytes keeps uuid + "-" + name under the 255-byte filename limit.
	maxNameBytes = 200
	maxExtBytes  = 16
)

// FileService is the file registry: metadata in the repository, bytes in the blob store.
type FileService struct {
	store   repository.FileStore
	blobs   blob.Store
	newCode func() (string, error)
}

// NewFileService creates a file service.
func NewFileService(store repository.FileStore, blobs blob.Store) *FileService {
	return &FileService{
		store:   store,
		blobs:   blobs,
		newCode: randomCode,
	}
}

// randomCode draws a six-digit code uniformly from [100000, 999999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

func (s *FileService) generateCode(ctx context.Context) (string, error) {
	var code string
	for i := 0; i < codeAttempts; i++ {
		c, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code = c
		taken, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		slog.Debug("share code collision, redrawing", "attempt", i+1)
	}
	// give up and accept the collision; lookups resolve to the newest record
	slog.Warn("share code still taken after retries", "attempts", codeAttempts)
	return code, nil
}

// StoredName derives a unique blob key from the uploaded file name.
func StoredName(originalName string) string {
	return uuid.NewString() + "-" + safeFilename(originalName)
}

func safeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}
	return truncateName(name, maxNameBytes)
}

// truncateName cuts name to at most max bytes on a rune boundary, keeping a
// short extension.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > maxExtBytes {
		ext = ""
	}
	base := name[:len(name)-len(ext)]
	cut := max - len(ext)
	for cut > 0 && !utf8.RuneStart(base[cut]) {
		cut--
	}
	return base[:cut] + ext
}

// Store records metadata for a blob already saved under blobKey.
func (s *FileService) Store(ctx context.Context, ownerID uuid.UUID, originalName, blobKey string) (*models.File, error) {
	code, err := s.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		OriginalName: originalName,
		StoredName:   blobKey,
		Code:         code,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("save file record: %w", err)
	}
	return file, nil
}

// Upload saves the bytes and records the metadata. If the record cannot be
// written the blob is removed again.
func (s *FileService) Upload(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader, size int64) (*models.File, error) {
	originalName = strings.TrimSpace(originalName)
	if originalName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	key := StoredName(originalName)
	if err := s.blobs.Save(ctx, key, r, size); err != nil {
		return nil, fmt.Errorf("save blob: %w", err)
	}

	file, err := s.Store(ctx, ownerID, originalName, key)
	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			slog.Error("remove orphaned blob failed", "key", key, "err", delErr)
		}
		return nil, err
	}

	slog.Info("file uploaded", "file_id", file.ID, "owner_id", ownerID, "stored_name", key)
	return file, nil
}

// ListByOwner returns the owner's files in upload order.
func (s *FileService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error) {
	files, err := s.store.GetFilesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// DeleteOwned removes the record if it belongs to ownerID. The blob is
// deleted best-effort; a failure is logged and the record stays deleted.
func (s *FileService) DeleteOwned(ctx context.Context, ownerID, fileID uuid.UUID) error {
	file, err := s.store.DeleteFileByOwner(ctx, ownerID, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete file record: %w", err)
	}

	if err := s.blobs.Delete(context.WithoutCancel(ctx), file.StoredName); err != nil {
		slog.Error("delete blob failed", "file_id", file.ID, "key", file.StoredName, "err", err)
	}
	slog.Info("file deleted", "file_id", file.ID, "owner_id", ownerID)
	return nil
}

// FindByCode resolves a share code for any authenticated user.
func (s *FileService) FindByCode(ctx context.Context, code string) (*models.File, error) {
	file, err := s.store.GetFileByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file by code: %w", err)
	}
	return file, nil
}

// Open resolves a share code and opens the blob. The caller closes the reader.
func (s *FileService) Open(ctx context.Context, code string) (*models.File, io.ReadCloser, error) {
	file, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, file.StoredName)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			slog.Warn("file record without blob", "file_id", file.ID, "key", file.StoredName)
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return file, rc, nil
}
