package handler

import (
	"parlor/internal/app/chat"
	"parlor/internal/app/message"
	"parlor/internal/app/user"
	"parlor/internal/configs"
)

// AppDeps bundles everything the HTTP layer needs.
type AppDeps struct {
	Config   *configs.AppConfig
	Hub      *chat.Hub
	Users    *user.Service
	Messages message.Store
}
