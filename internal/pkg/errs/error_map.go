/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Board and Mind Map Business Logic Errors
	ErrBoardNotFound:      {Code: ErrBoardNotFound, Message: "Board not found.", Status: http.StatusNotFound},
	ErrMindMapNotFound:    {Code: ErrMindMapNotFound, Message: "Mind map not found.", Status: http.StatusNotFound},
	ErrTitleRequired:      {Code: ErrTitleRequired, Message: "Title is required."},
	ErrPermissionDenied:   {Code: ErrPermissionDenied, Message: "You do not have permission to modify this document.", Status: http.StatusForbidden},
	ErrCollaboratorExists: {Code: ErrCollaboratorExists, Message: "User is already a collaborator."},
	ErrPermissionInvalid:  {Code: ErrPermissionInvalid, Message: "Invalid collaborator permission."},

	// 3xxx: User and Session Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password."},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username is already taken."},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username."},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found."},

	// 4xxx: Snapshot Export Errors
	ErrExportDisabled:      {Code: ErrExportDisabled, Message: "Snapshot export is not available."},
	ErrSnapshotTypeInvalid: {Code: ErrSnapshotTypeInvalid, Message: "Unsupported snapshot type."},
	ErrSnapshotTooLarge:    {Code: ErrSnapshotTooLarge, Message: "Snapshot is too large."},
	ErrSnapshotKeyInvalid:  {Code: ErrSnapshotKeyInvalid, Message: "Invalid snapshot."},
	ErrStorageFailed:       {Code: ErrStorageFailed, Message: "Snapshot storage failed. Please try again."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
