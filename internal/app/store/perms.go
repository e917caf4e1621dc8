package store

// Permission is a collaborator's access level on a document.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// DocumentKind distinguishes board grants from mind-map grants.
type DocumentKind string

const (
	KindBoard   DocumentKind = "board"
	KindMindMap DocumentKind = "mindmap"
)

// Valid reports whether p is a recognized permission level.
func (p Permission) Valid() bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return true
	}
	return false
}

// CanWrite reports whether p allows modifying document content.
func (p Permission) CanWrite() bool {
	return p == PermissionWrite || p == PermissionAdmin
}

// CanManage reports whether p allows managing the document's collaborators.
func (p Permission) CanManage() bool {
	return p == PermissionAdmin
}
