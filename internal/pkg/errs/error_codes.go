/*
Package errs provides custom error types and application-level error code constants.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Board and Mind Map Business Logic Errors
const (
	// ErrBoardNotFound indicates the board does not exist or is not visible to the caller.
	ErrBoardNotFound = 2101

	// ErrMindMapNotFound indicates the mind map does not exist or is not visible to the caller.
	ErrMindMapNotFound = 2102

	// ErrTitleRequired indicates a create request without a title.
	ErrTitleRequired = 2103

	// ErrPermissionDenied indicates the caller lacks write or admin access to the document.
	ErrPermissionDenied = 2104

	// ErrCollaboratorExists indicates the user is already a collaborator on the document.
	ErrCollaboratorExists = 2105

	// ErrPermissionInvalid indicates an unrecognized collaborator permission level.
	ErrPermissionInvalid = 2106
)

// 3xxx: User and Session Errors
const (
	// ErrUnauthorized indicates the request requires a signed-in user.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = 3002

	// ErrUserAlreadyExists indicates the username is already taken.
	ErrUserAlreadyExists = 3003

	// ErrInvalidUsername indicates the username fails format validation.
	ErrInvalidUsername = 3004

	// ErrInvalidPassword indicates the password fails length validation.
	ErrInvalidPassword = 3005

	// ErrUserNotFound indicates no account matches the identifier.
	ErrUserNotFound = 3006
)

// 4xxx: Snapshot Export Errors
const (
	// ErrExportDisabled indicates snapshot storage is not configured on this deployment.
	ErrExportDisabled = 4001

	// ErrSnapshotTypeInvalid indicates an unsupported snapshot image type.
	ErrSnapshotTypeInvalid = 4002

	// ErrSnapshotTooLarge indicates the snapshot exceeds the size limit.
	ErrSnapshotTooLarge = 4003

	// ErrSnapshotKeyInvalid indicates a malformed or foreign snapshot object key.
	ErrSnapshotKeyInvalid = 4004

	// ErrStorageFailed indicates the storage backend rejected the operation.
	ErrStorageFailed = 4005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000
)
