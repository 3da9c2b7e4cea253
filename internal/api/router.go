package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/stock"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *stock.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	productsHandler := &ProductsHandler{DB: db}
	locationsHandler := &LocationsHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db, Stock: svc}
	transfersHandler := &TransfersHandler{DB: db, Stock: svc}

	authMW := AuthMiddleware(db, jwtSecret)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login. Every signed-in user manages their own session.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))
	mux.Handle("GET /api/auth/me", read(authHandler.Me))
	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))

	// Catalog: read (all roles), write (manager+).
	mux.Handle("GET /api/products", read(productsHandler.List))
	mux.Handle("POST /api/products", write(productsHandler.Create))
	mux.Handle("GET /api/products/{id}", read(productsHandler.Get))
	mux.Handle("DELETE /api/products/{id}", write(productsHandler.Delete))

	mux.Handle("GET /api/locations", read(locationsHandler.List))
	mux.Handle("POST /api/locations", write(locationsHandler.Create))
	mux.Handle("GET /api/locations/{id}", read(locationsHandler.Get))
	mux.Handle("DELETE /api/locations/{id}", write(locationsHandler.Delete))

	// Inventory: read (all roles), write (manager+).
	mux.Handle("GET /api/inventory", read(inventoryHandler.List))
	mux.Handle("POST /api/inventory", write(inventoryHandler.Create))
	mux.Handle("GET /api/inventory/{id}", read(inventoryHandler.Get))
	mux.Handle("GET /api/inventory/{id}/events", read(inventoryHandler.Events))
	mux.Handle("POST /api/inventory/{id}/adjust", write(inventoryHandler.Adjust))
	mux.Handle("POST /api/inventory/{id}/reserve", write(inventoryHandler.Reserve))
	mux.Handle("POST /api/inventory/{id}/release", write(inventoryHandler.Release))
	mux.Handle("POST /api/inventory/{id}/commit", write(inventoryHandler.Commit))

	// Transfers: read (all roles), write (manager+).
	mux.Handle("GET /api/transfers", read(transfersHandler.List))
	mux.Handle("POST /api/transfers", write(transfersHandler.Create))
	mux.Handle("GET /api/transfers/{id}", read(transfersHandler.Get))

	return mux
}
