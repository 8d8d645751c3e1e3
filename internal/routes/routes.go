package routes

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"medilink-server/internal/audit"
	"medilink-server/internal/config"
	"medilink-server/internal/handlers"
	"medilink-server/internal/middleware"
	"medilink-server/internal/models"
	"medilink-server/internal/services"
	"medilink-server/internal/storage"
	"medilink-server/internal/utils"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	cipher, err := utils.NewMessageCipher(cfg.MessageKey)
	if err != nil {
		return err
	}

	store := storage.New(db)
	authService := services.NewAuthService(store)
	profileService := services.NewProfileService(store)
	vault := services.NewMessageVault(store, cipher)
	ledger := services.NewPrescriptionLedger(store)

	authHandler := handlers.NewAuthHandler(authService, profileService, cfg)
	profileHandler := handlers.NewProfileHandler(profileService)
	messageHandler := handlers.NewMessageHandler(vault)
	prescriptionHandler := handlers.NewPrescriptionHandler(ledger)

	// Server-side session store; the cookie only carries the session ID.
	sessionStore := memstore.NewStore([]byte(cfg.SessionSecret))
	router.Use(sessions.Sessions("medilink_session", sessionStore))

	recorder := audit.NewFileRecorder(cfg.AuditDir, logger)

	api := router.Group("/api")
	api.Use(middleware.Audit(recorder, logger))

	// Public routes (no session required)
	api.POST("/login/:role", authHandler.Login)
	api.POST("/register/:role", authHandler.Register)

	// Authenticated routes
	private := api.Group("")
	private.Use(middleware.RequireSession())
	{
		private.GET("/logout", authHandler.Logout)
		private.POST("/logout", authHandler.Logout)
		private.GET("/me", authHandler.Me)

		// Cross-role profile access; visibility enforced in the service
		private.GET("/profile/:role/:userID", profileHandler.GetOther)

		// Doctor-only patient history annotation
		private.PUT("/profile/patient/:patientID",
			middleware.RequireSession(models.RoleDoctor), profileHandler.UpdatePatientHistory)

		// Enrollment listings used by the dashboards
		private.GET("/doctor/patients",
			middleware.RequireSession(models.RoleDoctor), profileHandler.DoctorPatients)
		private.GET("/patient/doctor",
			middleware.RequireSession(models.RolePatient), profileHandler.PatientDoctors)

		// Messaging; patient-self / enrolled-doctor rule enforced in handler
		private.GET("/messages/:patientID", messageHandler.GetHistory)
		private.POST("/messages/:patientID", messageHandler.Append)

		// Prescriptions
		private.GET("/prescriptions", prescriptionHandler.List)
		private.GET("/prescriptions/:id", prescriptionHandler.Get)
		private.POST("/prescriptions",
			middleware.RequireSession(models.RoleDoctor), prescriptionHandler.Create)
		private.DELETE("/prescriptions/:id",
			middleware.RequireSession(models.RolePharmacist), prescriptionHandler.Redeem)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	return nil
}
