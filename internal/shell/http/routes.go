package http

import (
	"github.com/gorilla/mux"

	"jobwatch/internal/core/usecases"
)

func SetupRoutes(watchService *usecases.WatchService, registry *usecases.SessionRegistry, defaults usecases.MonitorOptions) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	watchHandler := NewWatchHandler(watchService)
	monitorHandler := NewMonitorHandler(registry, defaults)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Watch CRUD operations
	api.HandleFunc("/watches", watchHandler.CreateWatch).Methods("POST")
	api.HandleFunc("/watches", watchHandler.GetAllWatches).Methods("GET")
	api.HandleFunc("/watches/{id}", watchHandler.GetWatch).Methods("GET")
	api.HandleFunc("/watches/{id}", watchHandler.UpdateWatch).Methods("PUT")
	api.HandleFunc("/watches/{id}", watchHandler.DeleteWatch).Methods("DELETE")

	// Watch control operations
	api.HandleFunc("/watches/{id}/run", watchHandler.RunWatch).Methods("POST")
	api.HandleFunc("/watches/{id}/pause", watchHandler.PauseWatch).Methods("POST")
	api.HandleFunc("/watches/{id}/resume", watchHandler.ResumeWatch).Methods("POST")

	// Ad hoc monitor sessions
	api.HandleFunc("/monitors", monitorHandler.StartMonitor).Methods("POST")
	api.HandleFunc("/monitors", monitorHandler.GetAllMonitors).Methods("GET")
	api.HandleFunc("/monitors/{id}", monitorHandler.GetMonitor).Methods("GET")

	return router
}
