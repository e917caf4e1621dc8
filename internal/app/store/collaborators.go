package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// AddCollaborator grants username the given permission on a document. The
// actor must be the owner or hold an admin grant. The new collaborator's
// resolved identity is returned so handlers can echo it back.
func (s *Store) AddCollaborator(ctx context.Context, kind DocumentKind, docID, actorID, username string, permission Permission) (Collaborator, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return Collaborator{}, err
	}

	allowed, err := s.canManage(ctx, kind, docID, actorID)
	if err != nil {
		return Collaborator{}, err
	}
	if !allowed {
		return Collaborator{}, s.deniedOrNotFound(ctx, kind, docID, actorID)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO collaborators (document_id, document_kind, user_id, permission)
		VALUES ($1, $2, $3, $4)
	`, docID, string(kind), user.ID, string(permission))
	if err != nil {
		if IsUniqueViolation(err) {
			return Collaborator{}, ErrDuplicateCollaborator
		}
		return Collaborator{}, err
	}

	return Collaborator{UserID: user.ID, Username: user.Username, Permission: permission}, nil
}

// RemoveCollaborator revokes a user's grant. The actor must be the owner,
// hold an admin grant, or be removing themselves.
func (s *Store) RemoveCollaborator(ctx context.Context, kind DocumentKind, docID, actorID, userID string) error {
	if actorID != userID {
		allowed, err := s.canManage(ctx, kind, docID, actorID)
		if err != nil {
			return err
		}
		if !allowed {
			return s.deniedOrNotFound(ctx, kind, docID, actorID)
		}
	}

	ct, err := s.pool.Exec(ctx, `
		DELETE FROM collaborators
		WHERE document_id = $1 AND document_kind = $2 AND user_id = $3
	`, docID, string(kind), userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// listCollaborators returns the grants on a document ordered by when they
// were added.
func (s *Store) listCollaborators(ctx context.Context, kind DocumentKind, docID string) ([]Collaborator, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.user_id, u.username, c.permission
		FROM collaborators c
		JOIN users u ON u.id = c.user_id
		WHERE c.document_id = $1 AND c.document_kind = $2
		ORDER BY c.added_at
	`, docID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Collaborator
	for rows.Next() {
		var c Collaborator
		if err := rows.Scan(&c.UserID, &c.Username, &c.Permission); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CanEditDocument reports whether the user owns the document or holds a
// write/admin grant on it.
func (s *Store) CanEditDocument(ctx context.Context, kind DocumentKind, docID, userID string) (bool, error) {
	table := "boards"
	if kind == KindMindMap {
		table = "mind_maps"
	}

	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM `+table+` d WHERE d.id = $1 AND d.owner_id = $2)
		    OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = $1 AND c.document_kind = $3 AND c.user_id = $2
			  AND c.permission IN ('write', 'admin')
		       )
	`, docID, userID, string(kind)).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// canView reports whether the user owns the document, collaborates on it, or
// it is public.
func (s *Store) canView(ctx context.Context, kind DocumentKind, docID, userID string) (bool, error) {
	table := "boards"
	if kind == KindMindMap {
		table = "mind_maps"
	}

	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM `+table+` d WHERE d.id = $1 AND (d.owner_id = $2 OR d.is_public))
		    OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = $1 AND c.document_kind = $3 AND c.user_id = $2
		       )
	`, docID, userID, string(kind)).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// deniedOrNotFound distinguishes a rejected change on a document the user can
// see (ErrPermissionDenied) from one they cannot (ErrNotFound).
func (s *Store) deniedOrNotFound(ctx context.Context, kind DocumentKind, docID, userID string) error {
	visible, err := s.canView(ctx, kind, docID, userID)
	if err != nil {
		return err
	}
	if visible {
		return ErrPermissionDenied
	}
	return ErrNotFound
}

// canManage reports whether the actor owns the document or holds an admin
// grant on it.
func (s *Store) canManage(ctx context.Context, kind DocumentKind, docID, actorID string) (bool, error) {
	table := "boards"
	if kind == KindMindMap {
		table = "mind_maps"
	}

	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM `+table+` d WHERE d.id = $1 AND d.owner_id = $2)
		    OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = $1 AND c.document_kind = $3 AND c.user_id = $2
			  AND c.permission = 'admin'
		       )
	`, docID, actorID, string(kind)).Scan(&ok)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
