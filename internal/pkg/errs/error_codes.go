/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
and in responses sent to clients.
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
)

// 2xxx: Chat Business Logic Errors
const (
	// ErrUsernameRequired indicates a login attempt with an empty username.
	ErrUsernameRequired = 2101

	// ErrRoomIDRequired indicates a request that named no room.
	ErrRoomIDRequired = 2102

	// ErrNotInRoom indicates an operation that requires a joined room from a
	// connection that has not joined one.
	ErrNotInRoom = 2103

	// ErrEmptyMessage indicates a message with empty content.
	ErrEmptyMessage = 2201

	// ErrMessageContentTooLong indicates message content over the length limit.
	ErrMessageContentTooLong = 2202
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrPersistence indicates the durable store was unreachable or timed out.
	ErrPersistence = 5201
)
