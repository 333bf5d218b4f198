package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. It is immutable after registration.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never exposed in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// File is the metadata of an uploaded blob.
// StoredName is the blob key; Code is the six-digit share code.
type File struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"ownerId"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"createdAt"`
}
