package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dmarquez/inventory-management/internal/auth"
	"github.com/dmarquez/inventory-management/internal/item"
	"github.com/dmarquez/inventory-management/internal/movement"
	"github.com/dmarquez/inventory-management/internal/permission"
	"github.com/dmarquez/inventory-management/internal/report"
	"github.com/dmarquez/inventory-management/internal/transport/middleware"
	"github.com/dmarquez/inventory-management/internal/transport/swagger"
	"github.com/dmarquez/inventory-management/internal/user"
	"github.com/go-chi/chi"
)

// Permission codes guarding the route groups. The catalog seeded by
// the migrations carries the same codes.
const (
	PermInventoryView   = "inventory.view"
	PermInventoryCreate = "inventory.create"
	PermInventoryEdit   = "inventory.edit"
	PermInventoryDelete = "inventory.delete"
	PermMovementsView   = "movements.view"
	PermMovementsEntry  = "movements.create_entry"
	PermMovementsExit   = "movements.create_exit"
	PermReportsView     = "reports.view"
	PermReportsExport   = "reports.export"
	PermUsersView       = "users.view"
	PermUsersManage     = "users.manage"
	PermAuditView       = "audit.view"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins string,
	authHandler *auth.Handler, itemHandler *item.Handler,
	movementHandler *movement.Handler, reportHandler *report.Handler,
	userHandler *user.Handler, permissionHandler *permission.Handler,
	logger *slog.Logger) {

	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
			sr.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/items", func(ir chi.Router) {
				ir.With(authHandler.RequirePermission(PermInventoryView)).
					Get("/", itemHandler.ListItems)
				ir.With(authHandler.RequirePermission(PermInventoryView)).
					Get("/deleted", itemHandler.ListDeletedItems)
				ir.With(authHandler.RequirePermission(PermInventoryView)).
					Get("/{id}", itemHandler.GetItem)
				ir.With(authHandler.RequirePermission(PermInventoryCreate)).
					Post("/", itemHandler.CreateItem)
				ir.With(authHandler.RequirePermission(PermInventoryEdit)).
					Put("/{id}", itemHandler.UpdateItem)
				ir.With(authHandler.RequirePermission(PermInventoryDelete)).
					Delete("/{id}", itemHandler.DeleteItem)
				ir.With(authHandler.RequirePermission(PermInventoryDelete)).
					Post("/{id}/restore", itemHandler.RestoreItem)
				ir.With(authHandler.RequirePermission(PermInventoryDelete)).
					Delete("/{id}/purge", itemHandler.HardDeleteItem)
			})

			pr.Route("/movements", func(mr chi.Router) {
				mr.With(authHandler.RequirePermission(PermMovementsView)).
					Get("/", movementHandler.ListMovements)
				mr.With(authHandler.RequirePermission(PermMovementsView)).
					Get("/{id}", movementHandler.GetMovement)
				mr.With(authHandler.RequirePermission(PermMovementsEntry)).
					Post("/entries", movementHandler.RecordEntry)
				mr.With(authHandler.RequirePermission(PermMovementsExit)).
					Post("/exits", movementHandler.RecordExit)
				mr.With(authHandler.RequirePermission(PermMovementsExit)).
					Post("/adjustments", movementHandler.RecordAdjustment)
				mr.With(authHandler.RequirePermission(PermMovementsExit)).
					Post("/transfers", movementHandler.RecordTransfer)
				mr.With(authHandler.RequirePermission(PermMovementsEntry)).
					Patch("/{id}", movementHandler.AnnotateMovement)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.With(authHandler.RequirePermission(PermReportsView)).
					Get("/summary", reportHandler.GetSummary)
				rr.With(authHandler.RequirePermission(PermReportsView)).
					Get("/low-stock", reportHandler.GetLowStock)
				rr.With(authHandler.RequirePermission(PermReportsView)).
					Get("/monthly", reportHandler.GetMonthlyTotals)
				rr.With(authHandler.RequirePermission(PermReportsExport)).
					Get("/inventory.xlsx", reportHandler.ExportInventoryExcel)
				rr.With(authHandler.RequirePermission(PermReportsExport)).
					Get("/movements.xlsx", reportHandler.ExportMovementsExcel)
				rr.With(authHandler.RequirePermission(PermReportsExport)).
					Get("/inventory.pdf", reportHandler.ExportInventoryPDF)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.With(authHandler.RequirePermission(PermUsersView)).
					Get("/", userHandler.ListUsers)
				ur.With(authHandler.RequirePermission(PermUsersView)).
					Get("/{id}", userHandler.GetUser)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Post("/", userHandler.CreateUser)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Put("/{id}", userHandler.UpdateUser)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Patch("/{id}/active", userHandler.SetUserActive)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Delete("/{id}", userHandler.DeleteUser)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Post("/{id}/restore", userHandler.RestoreUser)

				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Get("/{id}/permissions", permissionHandler.GetUserPermissions)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Put("/{id}/permissions", permissionHandler.ReconcileUserPermissions)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Post("/{id}/permissions", permissionHandler.GrantPermission)
				ur.With(authHandler.RequirePermission(PermUsersManage)).
					Delete("/{id}/permissions/{permissionID}", permissionHandler.RevokePermission)
				ur.With(authHandler.RequirePermission(PermAuditView)).
					Get("/{id}/permissions/history", permissionHandler.GetHistory)
			})

			pr.With(authHandler.RequirePermission(PermUsersManage)).
				Get("/permissions", permissionHandler.GetCatalog)
		})
	})
}
