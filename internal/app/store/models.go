package store

import (
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors returned by document operations. Handlers map these to the
// coded responses in the errs package.
var (
	// ErrNotFound means the document does not exist or is not visible to the caller.
	ErrNotFound = errors.New("document not found")

	// ErrPermissionDenied means the document is visible to the caller but the
	// attempted change requires a grant the caller does not hold.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateCollaborator means the user already collaborates on the document.
	ErrDuplicateCollaborator = errors.New("user is already a collaborator")
)

// User is one registered account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Collaborator is one user's grant on a document.
type Collaborator struct {
	UserID     string     `json:"userId"`
	Username   string     `json:"username"`
	Permission Permission `json:"permission"`
}

// Board is a whiteboard document. CanvasData holds the serialized canvas the
// client renders; Content is free-form document metadata. Neither is
// interpreted by the server.
type Board struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	OwnerID       string          `json:"ownerId"`
	CanvasData    string          `json:"canvasData"`
	Content       json.RawMessage `json:"content"`
	IsPublic      bool            `json:"isPublic"`
	Tags          []string        `json:"tags"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastModified  time.Time       `json:"lastModified"`
	Collaborators []Collaborator  `json:"collaborators,omitempty"`
}

// MindMap is a mind-map document. Nodes and Connections are stored as the
// client-produced JSON arrays; CenterNode references the root node's id.
type MindMap struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	OwnerID       string          `json:"ownerId"`
	Nodes         json.RawMessage `json:"nodes"`
	Connections   json.RawMessage `json:"connections"`
	CenterNode    string          `json:"centerNode"`
	IsPublic      bool            `json:"isPublic"`
	Tags          []string        `json:"tags"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastModified  time.Time       `json:"lastModified"`
	Collaborators []Collaborator  `json:"collaborators,omitempty"`
}
