/*
Package handler provides HTTP handler functions for board CRUD and sharing.
*/
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"thinksync/internal/app/store"
	"thinksync/internal/pkg/auth/jwt"
	"thinksync/internal/pkg/errs"
	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/randx"
	"thinksync/internal/pkg/req"
	"thinksync/internal/pkg/resp"
)

// requireUser returns the authenticated payload or writes an unauthorized
// response and returns nil.
func requireUser(w http.ResponseWriter, r *http.Request) *jwt.Payload {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil
	}
	return identity
}

// documentErrorCode maps store permission and lookup failures onto the coded
// responses for the given document kind. The second result is false for
// errors the caller must handle itself.
func documentErrorCode(err error, kind store.DocumentKind) (int, bool) {
	switch {
	case errors.Is(err, store.ErrPermissionDenied):
		return errs.ErrPermissionDenied, true
	case errors.Is(err, store.ErrNotFound):
		if kind == store.KindMindMap {
			return errs.ErrMindMapNotFound, true
		}
		return errs.ErrBoardNotFound, true
	}
	return 0, false
}

// documentIDParam extracts and validates the {id} URL parameter.
func documentIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !randx.IsValidID(id) {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return "", false
	}
	return id, true
}

type CreateBoardInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags"`
}

// HandleListBoards returns the boards the caller owns or collaborates on.
func HandleListBoards(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		boards, err := deps.Store.ListBoards(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "list_boards: query failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if boards == nil {
			boards = []store.Board{}
		}
		resp.RespondSuccess(w, r, map[string]any{"boards": boards})
	}
}

// HandleCreateBoard creates a new board owned by the caller.
func HandleCreateBoard(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		var input CreateBoardInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if strings.TrimSpace(input.Title) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrTitleRequired))
			return
		}

		board, err := deps.Store.CreateBoard(r.Context(), identity.ID, input.Title, input.Description, input.IsPublic, input.Tags)
		if err != nil {
			logx.Error(err, "create_board: insert failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Board created", "board_id", board.ID, "user_id", identity.ID)
		resp.RespondSuccess(w, r, map[string]any{"board": board})
	}
}

// HandleGetBoard returns one board visible to the caller.
func HandleGetBoard(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		board, err := deps.Store.GetBoard(r.Context(), id, identity.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrBoardNotFound))
				return
			}
			logx.Error(err, "get_board: query failed", "board_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"board": board})
	}
}

type UpdateBoardInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	IsPublic    *bool           `json:"isPublic"`
	Tags        []string        `json:"tags"`
	CanvasData  *string         `json:"canvasData"`
	Content     json.RawMessage `json:"content"`
}

// HandleUpdateBoard applies a partial update. Absent fields keep their value.
func HandleUpdateBoard(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		var input UpdateBoardInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrTitleRequired))
			return
		}

		board, err := deps.Store.UpdateBoard(r.Context(), id, identity.ID, store.UpdateBoardParams{
			Title:       input.Title,
			Description: input.Description,
			IsPublic:    input.IsPublic,
			Tags:        input.Tags,
			CanvasData:  input.CanvasData,
			Content:     input.Content,
		})
		if err != nil {
			if code, ok := documentErrorCode(err, store.KindBoard); ok {
				resp.RespondError(w, r, errs.NewError(code))
				return
			}
			logx.Error(err, "update_board: update failed", "board_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"board": board})
	}
}

// HandleDeleteBoard deletes a board. Only the owner may delete.
func HandleDeleteBoard(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		if err := deps.Store.DeleteBoard(r.Context(), id, identity.ID); err != nil {
			if code, ok := documentErrorCode(err, store.KindBoard); ok {
				resp.RespondError(w, r, errs.NewError(code))
				return
			}
			logx.Error(err, "delete_board: delete failed", "board_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Board deleted", "board_id", id, "user_id", identity.ID)
		resp.RespondSuccess(w, r, map[string]any{"deleted": true})
	}
}

// HandleAddBoardCollaborator grants another user access to a board.
func HandleAddBoardCollaborator(deps *AppDeps) http.HandlerFunc {
	return addCollaborator(deps, store.KindBoard)
}

// HandleRemoveBoardCollaborator revokes a user's access to a board.
func HandleRemoveBoardCollaborator(deps *AppDeps) http.HandlerFunc {
	return removeCollaborator(deps, store.KindBoard)
}

type AddCollaboratorInput struct {
	Username   string `json:"username"`
	Permission string `json:"permission"`
}

// addCollaborator is the shared grant handler for both document kinds.
func addCollaborator(deps *AppDeps, kind store.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		var input AddCollaboratorInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		permission := store.Permission(input.Permission)
		if input.Permission == "" {
			permission = store.PermissionWrite
		}
		if !permission.Valid() {
			resp.RespondError(w, r, errs.NewError(errs.ErrPermissionInvalid))
			return
		}

		collab, err := deps.Store.AddCollaborator(r.Context(), kind, id, identity.ID, input.Username, permission)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateCollaborator) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCollaboratorExists))
				return
			}
			if code, ok := documentErrorCode(err, kind); ok {
				resp.RespondError(w, r, errs.NewError(code))
				return
			}
			logx.Error(err, "add_collaborator: grant failed", "document_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Collaborator added", "document_id", id, "collaborator_id", collab.UserID, "permission", string(collab.Permission))
		resp.RespondSuccess(w, r, map[string]any{"collaborator": collab})
	}
}

// removeCollaborator is the shared revoke handler for both document kinds.
func removeCollaborator(deps *AppDeps, kind store.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireUser(w, r)
		if identity == nil {
			return
		}

		id, ok := documentIDParam(w, r)
		if !ok {
			return
		}

		userID := chi.URLParam(r, "userId")
		if !randx.IsValidID(userID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Store.RemoveCollaborator(r.Context(), kind, id, identity.ID, userID); err != nil {
			if code, ok := documentErrorCode(err, kind); ok {
				resp.RespondError(w, r, errs.NewError(code))
				return
			}
			logx.Error(err, "remove_collaborator: revoke failed", "document_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"removed": true})
	}
}
