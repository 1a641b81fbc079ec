package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/workflow"
)

// Login attempts allowed per client: a burst of 5, then one every 12 seconds.
const (
	loginEvery = 12 * time.Second
	loginBurst = 5
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, engine *workflow.Engine, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, limiter: newLoginLimiter(loginEvery, loginBurst)}
	usersHandler := &UsersHandler{DB: db}
	requestsHandler := &RequestsHandler{DB: db, Engine: engine}
	inventoryHandler := &InventoryHandler{DB: db, Engine: engine}
	assetsHandler := &AssetsHandler{DB: db, Engine: engine}
	dashboardHandler := &DashboardHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStock := RequireRole(model.RoleStoreKeeper, model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Requests (all roles; the engine checks each transition).
	mux.Handle("GET /api/requests", authMW(http.HandlerFunc(requestsHandler.List)))
	mux.Handle("POST /api/requests", authMW(http.HandlerFunc(requestsHandler.Create)))
	mux.Handle("GET /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Get)))
	mux.Handle("PUT /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.UpdateDraft)))
	mux.Handle("GET /api/requests/{id}/transitions", authMW(http.HandlerFunc(requestsHandler.Targets)))
	mux.Handle("POST /api/requests/{id}/transitions", authMW(http.HandlerFunc(requestsHandler.Transition)))

	// Inventory: read (all), write (store keeper and admin).
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("GET /api/inventory/low", authMW(http.HandlerFunc(inventoryHandler.Low)))
	mux.Handle("POST /api/inventory", authMW(requireStock(http.HandlerFunc(inventoryHandler.Create))))
	mux.Handle("PUT /api/inventory/{id}", authMW(requireStock(http.HandlerFunc(inventoryHandler.Update))))

	// Assets: read (all), write (store keeper and admin).
	mux.Handle("GET /api/assets", authMW(http.HandlerFunc(assetsHandler.List)))
	mux.Handle("POST /api/assets", authMW(requireStock(http.HandlerFunc(assetsHandler.Create))))
	mux.Handle("PUT /api/assets/{id}", authMW(requireStock(http.HandlerFunc(assetsHandler.Update))))
	mux.Handle("POST /api/assets/{id}/return", authMW(requireStock(http.HandlerFunc(assetsHandler.Return))))

	mux.Handle("GET /api/dashboard", authMW(http.HandlerFunc(dashboardHandler.Get)))

	return mux
}
