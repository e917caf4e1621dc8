/*
Package handler provides HTTP handler functions for board snapshot exports.

Snapshots are rendered client-side and moved through S3-compatible storage with
presigned URLs; the server only validates access and brokers the URLs.
*/
package handler

import (
	"net/http"

	"thinksync/internal/app/storage"
	"thinksync/internal/app/store"
	"thinksync/internal/pkg/errs"
	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/req"
	"thinksync/internal/pkg/resp"
)

type PresignSnapshotInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// editableBoard checks exports are configured, the caller is authenticated,
// and the caller may modify the board. It writes the error response itself.
func editableBoard(deps *AppDeps, w http.ResponseWriter, r *http.Request) (string, bool) {
	if !deps.Config.ExportsEnabled() {
		resp.RespondError(w, r, errs.NewError(errs.ErrExportDisabled))
		return "", false
	}

	identity := requireUser(w, r)
	if identity == nil {
		return "", false
	}

	boardID, ok := documentIDParam(w, r)
	if !ok {
		return "", false
	}

	canEdit, err := deps.Store.CanEditDocument(r.Context(), store.KindBoard, boardID, identity.ID)
	if err != nil {
		logx.Error(err, "snapshot: permission check failed", "board_id", boardID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return "", false
	}
	if !canEdit {
		resp.RespondError(w, r, errs.NewError(errs.ErrBoardNotFound))
		return "", false
	}

	return boardID, true
}

// HandlePresignSnapshotUpload validates the snapshot parameters and returns a
// presigned upload URL plus the object key the client must use.
func HandlePresignSnapshotUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boardID, ok := editableBoard(deps, w, r)
		if !ok {
			return
		}

		var input PresignSnapshotInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateSnapshotType(input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := storage.ValidateSnapshotSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := storage.NewSnapshotKey(boardID, input.MimeType)

		uploadURL, err := deps.StorageService.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "snapshot: presign upload failed", "board_id", boardID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
		})
	}
}

// HandlePresignSnapshotDownload returns a presigned download URL for a
// previously exported snapshot key.
func HandlePresignSnapshotDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boardID, ok := editableBoard(deps, w, r)
		if !ok {
			return
		}

		key := r.URL.Query().Get("key")
		if customErr := storage.ValidateSnapshotKey(key, boardID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.StorageService.GetObjectMetadata(r.Context(), key); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrSnapshotKeyInvalid))
			return
		}

		downloadURL, err := deps.StorageService.PresignDownload(r.Context(), key, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "snapshot: presign download failed", "board_id", boardID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": downloadURL,
		})
	}
}

type DeleteSnapshotInput struct {
	Key string `json:"key"`
}

// HandleDeleteSnapshot removes one exported snapshot object.
func HandleDeleteSnapshot(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boardID, ok := editableBoard(deps, w, r)
		if !ok {
			return
		}

		var input DeleteSnapshotInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateSnapshotKey(input.Key, boardID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.StorageService.Delete(r.Context(), input.Key); err != nil {
			logx.Error(err, "snapshot: delete failed", "board_id", boardID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"deleted": true})
	}
}
