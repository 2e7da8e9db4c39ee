/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its CustomError template, standardizing HTTP
responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status means HTTP 200 with a non-zero business code in the body.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},

	// 2xxx: Chat Business Logic Errors
	ErrUsernameRequired:      {Code: ErrUsernameRequired, Message: "Username is required.", Status: http.StatusBadRequest},
	ErrRoomIDRequired:        {Code: ErrRoomIDRequired, Message: "Room is required.", Status: http.StatusBadRequest},
	ErrNotInRoom:             {Code: ErrNotInRoom, Message: "Join a room first.", Status: http.StatusBadRequest},
	ErrEmptyMessage:          {Code: ErrEmptyMessage, Message: "Message cannot be empty.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message exceeds the maximum length of %d bytes.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:     {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistence: {Code: ErrPersistence, Message: "Message storage is temporarily unavailable.", Status: http.StatusInternalServerError},
}
