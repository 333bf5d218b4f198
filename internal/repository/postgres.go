package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("postgres connection pool established")
	return &PostgresStore{db: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// --- UserStore ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	sql := `
        INSERT INTO users (id, username, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`

	_, err := s.db.Exec(ctx, sql, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	sql := `
        SELECT id, username, password_hash, created_at
        FROM users
        WHERE username = $1`

	return s.scanUser(s.db.QueryRow(ctx, sql, username))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql := `
        SELECT id, username, password_hash, created_at
        FROM users
        WHERE id = $1`

	return s.scanUser(s.db.QueryRow(ctx, sql, id))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// --- FileStore ---

func (s *PostgresStore) CreateFile(ctx context.Context, file *models.File) error {
	sql := `
        INSERT INTO files (id, owner_id, original_name, stored_name, code, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, sql,
		file.ID,
		file.OwnerID,
		file.OriginalName,
		file.StoredName,
		file.Code,
		file.CreatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrNotFound
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFilesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error) {
	sql := `
        SELECT id, owner_id, original_name, stored_name, code, created_at
        FROM files
        WHERE owner_id = $1
        ORDER BY created_at`

	rows, err := s.db.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	// empty slice, not nil, so the JSON is []
	files := []*models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, file)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

func (s *PostgresStore) GetFileByCode(ctx context.Context, code string) (*models.File, error) {
	sql := `
        SELECT id, owner_id, original_name, stored_name, code, created_at
        FROM files
        WHERE code = $1
        ORDER BY created_at DESC
        LIMIT 1`

	file, err := scanFile(s.db.QueryRow(ctx, sql, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file by code: %w", err)
	}
	return file, nil
}

func (s *PostgresStore) DeleteFileByOwner(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	sql := `
        DELETE FROM files
        WHERE id = $1 AND owner_id = $2
        RETURNING id, owner_id, original_name, stored_name, code, created_at`

	file, err := scanFile(s.db.QueryRow(ctx, sql, fileID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete file: %w", err)
	}
	return file, nil
}

func (s *PostgresStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM files WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return exists, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	file := &models.File{}
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.OriginalName,
		&file.StoredName,
		&file.Code,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}
