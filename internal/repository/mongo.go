package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeshare-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	filesCollection = "files"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type fileDocument struct {
	ID           string    `bson:"_id"`
	OwnerID      string    `bson:"owner_id"`
	OriginalName string    `bson:"original_name"`
	StoredName   string    `bson:"stored_name"`
	Code         string    `bson:"code"`
	CreatedAt    time.Time `bson:"created_at"`
}

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	files  *mongo.Collection
}

// NewMongoStore connects, pings and ensures the indexes exist.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection(usersCollection),
		files:  db.Collection(filesCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("mongo connection established", "database", database)
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = s.files.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stored_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "code", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create files indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		slog.Warn("mongo disconnect failed", "err", err)
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// --- UserStore ---

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, userDocument{
		ID:           user.ID.String(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	return &models.User{
		ID:           id,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// --- FileStore ---

func (s *MongoStore) CreateFile(ctx context.Context, file *models.File) error {
	// documents have no foreign keys, so the owner is checked explicitly
	if _, err := s.GetUserByID(ctx, file.OwnerID); err != nil {
		return err
	}

	_, err := s.files.InsertOne(ctx, fileDocument{
		ID:           file.ID.String(),
		OwnerID:      file.OwnerID.String(),
		OriginalName: file.OriginalName,
		StoredName:   file.StoredName,
		Code:         file.Code,
		CreatedAt:    file.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (s *MongoStore) GetFilesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error) {
	cur, err := s.files.Find(ctx,
		bson.M{"owner_id": ownerID.String()},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	var docs []fileDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}

	files := make([]*models.File, 0, len(docs))
	for _, doc := range docs {
		file, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (s *MongoStore) GetFileByCode(ctx context.Context, code string) (*models.File, error) {
	var doc fileDocument
	err := s.files.FindOne(ctx,
		bson.M{"code": code},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file by code: %w", err)
	}
	return doc.toModel()
}

func (s *MongoStore) DeleteFileByOwner(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	var doc fileDocument
	err := s.files.FindOneAndDelete(ctx, bson.M{
		"_id":      fileID.String(),
		"owner_id": ownerID.String(),
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete file: %w", err)
	}
	return doc.toModel()
}

func (s *MongoStore) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := s.files.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return n > 0, nil
}

func (d fileDocument) toModel() (*models.File, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode file id: %w", err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("decode owner id: %w", err)
	}
	return &models.File{
		ID:           id,
		OwnerID:      ownerID,
		OriginalName: d.OriginalName,
		StoredName:   d.StoredName,
		Code:         d.Code,
		CreatedAt:    d.CreatedAt,
	}, nil
}
