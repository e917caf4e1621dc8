package handler

import (
	"thinksync/internal/app/realtime"
	"thinksync/internal/app/storage"
	"thinksync/internal/app/store"
	"thinksync/internal/configs"
)

type AppDeps struct {
	Coordinator    *realtime.Coordinator
	Config         *configs.AppConfig
	Store          *store.Store
	StorageService storage.StorageService
}
