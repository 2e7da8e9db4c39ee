/*
Package handler provides the HTTP handlers and routing for the Parlor chat server.

This file holds the login and logout endpoints. There is no credential store:
login upserts an identity by username and logout is a best-effort last-active
touch.
*/
package handler

import (
	"net/http"

	"parlor/internal/pkg/req"
	"parlor/internal/pkg/resp"
)

type LoginInput struct {
	Username    string `json:"username"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// HandleLogin resolves a username to a stable user identity.
// An empty username is the only rejection; passwords are not part of the model.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, customErr := deps.Users.Login(r.Context(), input.Username, input.IsAnonymous)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, u)
	}
}

type LogoutInput struct {
	UserID string `json:"userId"`
}

// HandleLogout records the user's departure. Always succeeds for a well-formed
// payload; an unknown id is a no-op.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LogoutInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		deps.Users.Logout(r.Context(), input.UserID)

		resp.RespondSuccess(w, r, map[string]any{"success": true})
	}
}
