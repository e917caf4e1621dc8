package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

const mindMapColumns = `m.id, m.title, m.description, m.owner_id, m.nodes, m.connections, m.center_node, m.is_public, m.tags, m.created_at, m.last_modified`

// UpdateMindMapParams carries a partial mind map update; nil fields are left
// unchanged.
type UpdateMindMapParams struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Tags        []string
	Nodes       json.RawMessage
	Connections json.RawMessage
	CenterNode  *string
}

// ListMindMaps returns the mind maps the user owns or collaborates on, most
// recently modified first.
func (s *Store) ListMindMaps(ctx context.Context, userID string) ([]MindMap, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+mindMapColumns+`
		FROM mind_maps m
		WHERE m.owner_id = $1
		   OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = m.id AND c.document_kind = 'mindmap' AND c.user_id = $1
		   )
		ORDER BY m.last_modified DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MindMap
	for rows.Next() {
		m, err := scanMindMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMindMap returns the mind map when the user owns it, collaborates on it,
// or it is public.
func (s *Store) GetMindMap(ctx context.Context, id, userID string) (MindMap, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+mindMapColumns+`
		FROM mind_maps m
		WHERE m.id = $1
		  AND (m.owner_id = $2
		       OR m.is_public
		       OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = m.id AND c.document_kind = 'mindmap' AND c.user_id = $2
		       ))
	`, id, userID)

	m, err := scanMindMap(row)
	if err != nil {
		return MindMap{}, err
	}

	m.Collaborators, err = s.listCollaborators(ctx, KindMindMap, m.ID)
	if err != nil {
		return MindMap{}, err
	}
	return m, nil
}

// CreateMindMap inserts a new mind map owned by ownerID.
func (s *Store) CreateMindMap(ctx context.Context, ownerID, title, description string, isPublic bool, tags []string) (MindMap, error) {
	if tags == nil {
		tags = []string{}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO mind_maps (title, description, owner_id, is_public, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, owner_id, nodes, connections, center_node, is_public, tags, created_at, last_modified
	`, title, description, ownerID, isPublic, tags)

	return scanMindMap(row)
}

// UpdateMindMap applies a partial update when the user is the owner or holds
// a write/admin grant.
func (s *Store) UpdateMindMap(ctx context.Context, id, userID string, params UpdateMindMapParams) (MindMap, error) {
	nodes := jsonbParam(params.Nodes)
	connections := jsonbParam(params.Connections)

	row := s.pool.QueryRow(ctx, `
		UPDATE mind_maps m SET
			title         = COALESCE($3, m.title),
			description   = COALESCE($4, m.description),
			is_public     = COALESCE($5, m.is_public),
			tags          = COALESCE($6, m.tags),
			nodes         = COALESCE($7::jsonb, m.nodes),
			connections   = COALESCE($8::jsonb, m.connections),
			center_node   = COALESCE($9, m.center_node),
			last_modified = now()
		WHERE m.id = $1
		  AND (m.owner_id = $2
		       OR EXISTS (
			SELECT 1 FROM collaborators c
			WHERE c.document_id = m.id AND c.document_kind = 'mindmap' AND c.user_id = $2
			  AND c.permission IN ('write', 'admin')
		       ))
		RETURNING `+mindMapColumns+`
	`, id, userID, params.Title, params.Description, params.IsPublic, params.Tags, nodes, connections, params.CenterNode)

	m, err := scanMindMap(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return MindMap{}, s.deniedOrNotFound(ctx, KindMindMap, id, userID)
		}
		return MindMap{}, err
	}
	return m, nil
}

// DeleteMindMap removes the mind map and its grants in one transaction. Only
// the owner may delete.
func (s *Store) DeleteMindMap(ctx context.Context, id, ownerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		DELETE FROM mind_maps WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.deniedOrNotFound(ctx, KindMindMap, id, ownerID)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM collaborators WHERE document_id = $1 AND document_kind = 'mindmap'
	`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// jsonbParam converts a raw JSON document to a nullable query parameter.
func jsonbParam(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	s := string(raw)
	return &s
}

func scanMindMap(row pgx.Row) (MindMap, error) {
	var m MindMap
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.OwnerID, &m.Nodes, &m.Connections,
		&m.CenterNode, &m.IsPublic, &m.Tags, &m.CreatedAt, &m.LastModified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MindMap{}, ErrNotFound
		}
		return MindMap{}, err
	}
	return m, nil
}
