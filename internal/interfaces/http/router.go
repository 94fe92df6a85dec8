package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/labelhub/labelhub-api/internal/application/admin"
	"github.com/labelhub/labelhub-api/internal/application/auth"
	"github.com/labelhub/labelhub-api/internal/application/carriers"
	"github.com/labelhub/labelhub-api/internal/application/dealer"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/infrastructure/pdf"
	"github.com/labelhub/labelhub-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	IssueUC   *labels.IssueUseCase
	HistoryUC *labels.HistoryUseCase
	CarrierUC *carriers.CarrierUseCase
	DealerUC  *dealer.DealerUseCase
	AdminUC   *admin.AdminUseCase
	PDFGen    *pdf.LabelPDFGenerator
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	labelHandler := NewLabelHandler(deps.IssueUC, deps.HistoryUC, deps.PDFGen)
	carrierHandler := NewCarrierHandler(deps.CarrierUC)
	dealerHandler := NewDealerHandler(deps.DealerUC)
	adminHandler := NewAdminHandler(deps.AdminUC)

	requireAuth := AuthMiddleware(deps.JWTSecret)
	// Cuentas top-level y admin; los sub-usuarios van por sus rutas espejo.
	accountRoles := RequireRole(jwt.PrincipalUser, jwt.PrincipalDealer, jwt.PrincipalAdmin)
	subUserRoles := RequireRole(jwt.PrincipalDealer, jwt.PrincipalSubUser, jwt.PrincipalAdmin)
	adminOnly := RequireRole(jwt.PrincipalAdmin)

	// ── Auth (público) ──
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/dealer/:dealerId/sub-users/login", authHandler.SubUserLogin)

	// ── Cuenta autenticada ──
	authGroup.Get("/user", requireAuth, accountRoles, authHandler.CurrentUser)
	authGroup.Get("/allowed-carriers/:userId", requireAuth, accountRoles, carrierHandler.AllowedCarriers)
	authGroup.Put("/generate-label/:userId", requireAuth, accountRoles, labelHandler.GenerateLabel)
	authGroup.Put("/bulk-generate-label/:userId", requireAuth, accountRoles, labelHandler.BulkGenerateLabels)
	authGroup.Post("/add-bulk-label-history/:userId", requireAuth, accountRoles, labelHandler.AddBulkHistory)
	authGroup.Get("/label-history/:userId", requireAuth, accountRoles, labelHandler.LabelHistory)
	authGroup.Get("/label-history/:userId/bulk/:eventId/pdf", requireAuth, accountRoles, labelHandler.BulkEventPDF)
	authGroup.Get("/balance-history/:userId", requireAuth, accountRoles, labelHandler.BalanceHistory)

	// ── Dealer: gestión de sub-usuarios ──
	subUsers := authGroup.Group("/dealer/:dealerId/sub-users", requireAuth)
	subUsers.Post("/", dealerHandler.AddSubUser)
	subUsers.Get("/", dealerHandler.ListSubUsers)
	subUsers.Get("/:subUserId", dealerHandler.GetSubUser)
	subUsers.Delete("/:subUserId", dealerHandler.DeleteSubUser)
	subUsers.Put("/:subUserId/balance", dealerHandler.TopUpSubUser)
	subUsers.Put("/:subUserId/rate", dealerHandler.SetSubUserRate)

	// ── Rutas espejo del sub-usuario ──
	subUsers.Put("/:subUserId/generate-label", subUserRoles, labelHandler.GenerateSubUserLabel)
	subUsers.Put("/:subUserId/bulk-generate-label", subUserRoles, labelHandler.BulkGenerateSubUserLabels)
	subUsers.Get("/:subUserId/label-history", subUserRoles, labelHandler.SubUserLabelHistory)
	subUsers.Get("/:subUserId/balance-history", subUserRoles, labelHandler.SubUserBalanceHistory)
	subUsers.Get("/:subUserId/allowed-carriers", subUserRoles, carrierHandler.SubUserAllowedCarriers)

	// ── Admin ──
	adminGroup := api.Group("/admin")
	adminGroup.Post("/register", adminHandler.Register)
	// Limiter en el login admin: frena fuerza bruta sobre la cuenta más sensible.
	adminGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
	}), adminHandler.Login)

	adminProtected := adminGroup.Group("/", requireAuth, adminOnly)
	adminProtected.Get("/users", adminHandler.ListUsers)
	adminProtected.Put("/users/:id/status", adminHandler.SetUserStatus)
	adminProtected.Put("/users/:id/balance", adminHandler.SetBalance)
	adminProtected.Put("/users/:id/rate", adminHandler.SetRate)
	adminProtected.Put("/users/:id/is-dealer", adminHandler.SetDealer)
	adminProtected.Delete("/users/:id", adminHandler.DeleteUser)
	adminProtected.Put("/users/:id/balance-history/:entryId/status", adminHandler.SetBalanceEntryStatus)

	adminProtected.Post("/add-carrier", carrierHandler.AddCarrier)
	adminProtected.Post("/add-vendor", carrierHandler.AddVendor)
	adminProtected.Put("/update-carrier-status", carrierHandler.UpdateCarrierStatus)
	adminProtected.Put("/update-vendor-status", carrierHandler.UpdateVendorStatus)
	adminProtected.Put("/:userId/carriers", carrierHandler.ReplaceCarriers)

	adminProtected.Post("/upload-shipments", adminHandler.UploadShipments)
	adminProtected.Get("/read/shipts", adminHandler.ListShipments)
	adminProtected.Post("/pull/shipts", adminHandler.PullShipment)
	adminProtected.Get("/generate-tracking", adminHandler.GenerateTracking)
}
