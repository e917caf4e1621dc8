package handler

import (
	"errors"
	"fmt"
	"testing"

	"thinksync/internal/app/store"
	"thinksync/internal/pkg/errs"
)

func TestDocumentErrorCode(t *testing.T) {
	cases := []struct {
		err      error
		kind     store.DocumentKind
		wantCode int
		wantOK   bool
	}{
		{store.ErrPermissionDenied, store.KindBoard, errs.ErrPermissionDenied, true},
		{store.ErrPermissionDenied, store.KindMindMap, errs.ErrPermissionDenied, true},
		{store.ErrNotFound, store.KindBoard, errs.ErrBoardNotFound, true},
		{store.ErrNotFound, store.KindMindMap, errs.ErrMindMapNotFound, true},
		{fmt.Errorf("wrapped: %w", store.ErrPermissionDenied), store.KindBoard, errs.ErrPermissionDenied, true},
		{errors.New("connection refused"), store.KindBoard, 0, false},
		{store.ErrDuplicateCollaborator, store.KindBoard, 0, false},
	}

	for _, tc := range cases {
		code, ok := documentErrorCode(tc.err, tc.kind)
		if ok != tc.wantOK || code != tc.wantCode {
			t.Fatalf("documentErrorCode(%v, %s) = %d, %v; want %d, %v",
				tc.err, tc.kind, code, ok, tc.wantCode, tc.wantOK)
		}
	}
}
