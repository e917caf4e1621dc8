/*
Package handler provides HTTP handler functions for mind map CRUD and sharing.
*/
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"thinksync/internal/app/store"
	"thinksync/internal/pkg/errs"
	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/req"
	"thinksync/internal/pkg/resp"
)

type CreateMindMapInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags"`
}

// HandleListMindMaps returns the mind maps the caller owns or collaborates on.
func HandleListMindMaps(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		maps, err := deps.Store.ListMindMaps(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "list_mindmaps: query failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if maps == nil {
			maps = []store.MindMap{}
		}
		resp.RespondSuccess(w, r, map[string]any{"mindMaps": maps})
	}
}

// HandleCreateMindMap creates a new mind map owned by the caller.
func HandleCreateMindMap(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		var input CreateMindMapInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if strings.TrimSpace(input.Title) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrTitleRequired))
			return
		}

		mindMap, err := deps.Store.CreateMindMap(r.Context(), identity.ID, input.Title, input.Description, input.IsPublic, input.Tags)
		if err != nil {
			logx.Error(err, "create_mindmap: insert failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Mind map created", "mind_map_id", mindMap.ID, "user_id", identity.ID)
		resp.RespondSuccess(w, r, map[string]any{"mindMap": mindMap})
	}
}

// HandleGetMindMap returns one mind map visible to the caller.
func HandleGetMindMap(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		mindMap, err := deps.Store.GetMindMap(r.Context(), id, identity.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMindMapNotFound))
				return
			}
			logx.Error(err, "get_mindmap: query failed", "mind_map_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"mindMap": mindMap})
	}
}

type UpdateMindMapInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	IsPublic    *bool           `json:"isPublic"`
	Tags        []string        `json:"tags"`
	Nodes       json.RawMessage `json:"nodes"`
	Connections json.RawMessage `json:"connections"`
	CenterNode  *string         `json:"centerNode"`
}

// HandleUpdateMindMap applies a partial update. Absent fields keep their value.
func HandleUpdateMindMap(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		var input UpdateMindMapInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrTitleRequired))
			return
		}

		mindMap, err := deps.Store.UpdateMindMap(r.Context(), id, identity.ID, store.UpdateMindMapParams{
			Title:       input.Title,
			Description: input.Description,
			IsPublic:    input.IsPublic,
			Tags:        input.Tags,
			Nodes:       input.Nodes,
			Connections: input.Connections,
			CenterNode:  input.CenterNode,
		})
		if err != nil {
			if code, ok := documentErrorCode(err, store.KindMindMap); ok {
				resp.RespondError(w, r, errs.NewError(code))
				return
			}
			logx.Error(err, "update_mindmap: update failed", "mind_map_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"mindMap": mindMap})
	}
}

// HandleDeleteMindMap deletes a mind map. Only the owner may delete.
func HandleDeleteMindMap(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		if err := deps.Store.DeleteMindMap(r.Context(), id, identity.ID); err != nil {
			if code, ok := documentErrorCode(err, store.KindMindMap); ok {
				resp.RespondError(w, r, errs.NewError(code))
				return
			}
			logx.Error(err, "delete_mindmap: delete failed", "mind_map_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Mind map deleted", "mind_map_id", id, "user_id", identity.ID)
		resp.RespondSuccess(w, r, map[string]any{"deleted": true})
	}
}

// HandleAddMindMapCollaborator grants another user access to a mind map.
func HandleAddMindMapCollaborator(deps *AppDeps) http.HandlerFunc {
	return addCollaborator(deps, store.KindMindMap)
}

// HandleRemoveMindMapCollaborator revokes a user's access to a mind map.
func HandleRemoveMindMapCollaborator(deps *AppDeps) http.HandlerFunc {
	return removeCollaborator(deps, store.KindMindMap)
}
