package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

// boardColumns is the select list shared by the board queries.
const boardColumns = `b.id, b.title, b.description, b.owner_id, b.canvas_data, b.content, b.is_public, b.tags, b.created_at, b.last_modified`

// UpdateBoardParams carries a partial board update; nil fields are left unchanged.
type UpdateBoardParams struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Tags        []string
	CanvasData  *string
	Content     json.RawMessage
}

// ListBoards returns the boards the user owns or collaborates on, most
// recently modified first.
func (s *Store) ListBoards(ctx context.Context, userID string) ([]Board, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+boardColumns+`
		FROM boards b
		WHERE b.owner_id = $1
		   OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = b.id AND c.document_kind = 'board' AND c.user_id = $1
		   )
		ORDER BY b.last_modified DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBoard returns the board when the user owns it, collaborates on it, or it
// is public. The collaborator list is attached for the response.
func (s *Store) GetBoard(ctx context.Context, id, userID string) (Board, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+boardColumns+`
		FROM boards b
		WHERE b.id = $1
		  AND (b.owner_id = $2
		       OR b.is_public
		       OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = b.id AND c.document_kind = 'board' AND c.user_id = $2
		       ))
	`, id, userID)

	b, err := scanBoard(row)
	if err != nil {
		return Board{}, err
	}

	b.Collaborators, err = s.listCollaborators(ctx, KindBoard, b.ID)
	if err != nil {
		return Board{}, err
	}
	return b, nil
}

// CreateBoard inserts a new board owned by ownerID.
func (s *Store) CreateBoard(ctx context.Context, ownerID, title, description string, isPublic bool, tags []string) (Board, error) {
	if tags == nil {
		tags = []string{}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO boards (title, description, owner_id, is_public, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, owner_id, canvas_data, content, is_public, tags, created_at, last_modified
	`, title, description, ownerID, isPublic, tags)

	return scanBoard(row)
}

// UpdateBoard applies a partial update when the user is the owner or holds a
// write/admin grant. ErrNotFound covers both a missing board and missing
// permission, mirroring the visibility rule.
func (s *Store) UpdateBoard(ctx context.Context, id, userID string, params UpdateBoardParams) (Board, error) {
	content := jsonbParam(params.Content)

	row := s.pool.QueryRow(ctx, `
		UPDATE boards b SET
			title         = COALESCE($3, b.title),
			description   = COALESCE($4, b.description),
			is_public     = COALESCE($5, b.is_public),
			tags          = COALESCE($6, b.tags),
			canvas_data   = COALESCE($7, b.canvas_data),
			content       = COALESCE($8::jsonb, b.content),
			last_modified = now()
		WHERE b.id = $1
		  AND (b.owner_id = $2
		       OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = b.id AND c.document_kind = 'board' AND c.user_id = $2
			  AND c.permission IN ('write', 'admin')
		       ))
		RETURNING `+boardColumns+`
	`, id, userID, params.Title, params.Description, params.IsPublic, params.Tags, params.CanvasData, content)

	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Board{}, s.deniedOrNotFound(ctx, KindBoard, id, userID)
		}
		return Board{}, err
	}
	return b, nil
}

// DeleteBoard removes the board and its grants in one transaction. Only the
// owner may delete.
func (s *Store) DeleteBoard(ctx context.Context, id, ownerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		DELETE FROM boards WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.deniedOrNotFound(ctx, KindBoard, id, ownerID)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM collaborators WHERE document_id = $1 AND document_kind = 'board'
	`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanBoard(row pgx.Row) (Board, error) {
	var b Board
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.CanvasData, &b.Content,
		&b.IsPublic, &b.Tags, &b.CreatedAt, &b.LastModified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Board{}, ErrNotFound
		}
		return Board{}, err
	}
	return b, nil
}
