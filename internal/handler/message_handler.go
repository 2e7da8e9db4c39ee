/*
Package handler provides the HTTP handlers and routing for the Parlor chat server.

This file holds the message history endpoints used by the presentation layer
to render a room before (or without) a live connection.
*/
package handler

import (
	"net/http"
	"time"

	"parlor/internal/app/chat"
	"parlor/internal/app/message"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
	"parlor/internal/pkg/req"
	"parlor/internal/pkg/resp"
)

// activeUserWindow is how far back "currently active" reaches for the
// active-users listing.
const activeUserWindow = 10 * time.Minute

// HandleGetMessages returns the most recent messages of a room in ascending
// timestamp order. An absent roomId falls back to the global room.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("roomId")
		if roomID == "" {
			roomID = chat.GlobalRoomID
		}

		messages, err := deps.Messages.RecentHistory(r.Context(), roomID, deps.Config.HistoryLimit)
		if err != nil {
			logx.Error(err, "Failed to fetch message history", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

type CreateMessageInput struct {
	ID          string    `json:"id,omitempty"`
	RoomID      string    `json:"roomId,omitempty"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	IsAnonymous bool      `json:"isAnonymous,omitempty"`
}

// HandleCreateMessage appends one message to the durable log without
// broadcasting it. The presentation layer uses it as a fallback write path;
// live fan-out happens only over the WebSocket transport.
func HandleCreateMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Content == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmptyMessage))
			return
		}
		if input.Username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUsernameRequired))
			return
		}
		if len(input.Content) > chat.MaxContentBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong, chat.MaxContentBytes))
			return
		}

		if input.ID == "" {
			input.ID = randx.MessageID()
		}
		if input.RoomID == "" {
			input.RoomID = chat.GlobalRoomID
		}
		if input.Timestamp.IsZero() {
			input.Timestamp = time.Now().UTC()
		}

		msg := message.Message{
			ID:          input.ID,
			RoomID:      input.RoomID,
			Username:    input.Username,
			Content:     input.Content,
			Timestamp:   input.Timestamp,
			IsAnonymous: input.IsAnonymous,
		}

		if err := deps.Messages.Append(r.Context(), msg); err != nil {
			logx.Error(err, "Failed to append message", "message_id", msg.ID, "room_id", msg.RoomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"success": true})
	}
}

// HandleActiveUsers lists users active within the last few minutes.
func HandleActiveUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Users.ActiveUsers(r.Context(), activeUserWindow)
		if err != nil {
			logx.Error(err, "Failed to fetch active users")
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		resp.RespondSuccess(w, r, users)
	}
}
