// Package router wires the HTTP surface: which handler serves which path
// and which roles may reach it.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/handler"
	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/model"
)

// Handlers bundles every handler the router registers.
type Handlers struct {
	Auth         *handler.AuthHandler
	Menu         *handler.MenuHandler
	Tables       *handler.TableHandler
	Orders       *handler.OrderHandler
	Reservations *handler.ReservationHandler
	Shifts       *handler.ShiftHandler
	Admin        *handler.AdminHandler
	Stream       *handler.StreamHandler
}

// Register sets up all routes. jwtSecret signs access tokens; rdb backs the
// auth rate limiter and may be nil.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Guest-facing browse surface, no auth.
	e.GET("/v1/menu", h.Menu.ListMenu)
	e.GET("/v1/categories", h.Menu.ListCategories)

	// Auth endpoints carry the token bucket so credential stuffing burns
	// out against Redis, not bcrypt.
	authGroup := e.Group("/v1/auth", middleware.NewTokenBucket(rlCfg, rdb))
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.POST("/refresh", h.Auth.Refresh)

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	v1.GET("/me", h.Auth.Me)

	// Any signed-in employee can punch the shift clock.
	v1.POST("/shifts/checkin", h.Shifts.CheckIn,
		middleware.RequireRole(model.RoleStaff, model.RoleKitchen, model.RoleManager, model.RoleAdmin))
	v1.POST("/shifts/checkout", h.Shifts.CheckOut,
		middleware.RequireRole(model.RoleStaff, model.RoleKitchen, model.RoleManager, model.RoleAdmin))

	staff := v1.Group("", middleware.RequireRole(model.RoleStaff, model.RoleManager, model.RoleAdmin))
	staff.GET("/tables", h.Tables.List)
	staff.PATCH("/tables/:id/status", h.Tables.UpdateStatus)
	staff.GET("/orders", h.Orders.List)
	staff.POST("/orders", h.Orders.Create)
	staff.POST("/orders/:id/complete", h.Orders.Complete)
	staff.GET("/stream/tables", h.Stream.TablesStream)

	kitchen := v1.Group("/kitchen", middleware.RequireRole(model.RoleKitchen, model.RoleAdmin))
	kitchen.GET("/queue", h.Orders.KitchenQueue)
	kitchen.PATCH("/items/:id/status", h.Orders.UpdateItemStatus)
	v1.GET("/stream/kitchen", h.Stream.KitchenStream,
		middleware.RequireRole(model.RoleKitchen, model.RoleAdmin))

	manager := v1.Group("", middleware.RequireRole(model.RoleManager, model.RoleAdmin))
	manager.GET("/reservations", h.Reservations.List)
	manager.POST("/reservations", h.Reservations.Create)
	manager.PATCH("/reservations/:id/status", h.Reservations.UpdateStatus)
	manager.GET("/shifts", h.Shifts.ListByDate)

	admin := v1.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/menu/items", h.Menu.ListAllItems)
	admin.POST("/menu/items", h.Menu.CreateItem)
	admin.PATCH("/menu/items/:id", h.Menu.UpdateItem)
	admin.DELETE("/menu/items/:id", h.Menu.DeleteItem)
	admin.POST("/menu/categories", h.Menu.CreateCategory)
	admin.DELETE("/menu/categories/:id", h.Menu.DeleteCategory)
	admin.POST("/tables", h.Tables.Create)
	admin.DELETE("/tables/:id", h.Tables.Delete)
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/users", h.Admin.CreateUser)
	admin.PATCH("/users/:id/role", h.Admin.UpdateUserRole)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
	admin.GET("/analytics/revenue", h.Admin.Revenue)
	admin.GET("/analytics/dishes", h.Admin.TopDishes)
}
