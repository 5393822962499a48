package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/locks"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	ucBooking "github.com/BruksfildServices01/salon-scheduler/internal/usecase/booking"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	log *zap.Logger,
	staffDayLock *locks.StaffDayLock,
) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	notifyDispatcher := notify.NewDispatcher(log)

	// ======================================================
	// USE CASES — BOOKING CORE
	// ======================================================
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)
	bookableDatesUC := ucBooking.NewListBookableDates(bookingRepo)
	solveChainUC := ucBooking.NewSolveChain(bookingRepo)

	commitPlanUC := ucBooking.NewCommitPlan(
		bookingRepo,
		auditDispatcher,
		notifyDispatcher,
		staffDayLock,
	)

	rescheduleUC := ucBooking.NewReschedule(
		bookingRepo,
		auditDispatcher,
		notifyDispatcher,
		staffDayLock,
	)

	cancelUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher, notifyDispatcher)
	completeUC := ucBooking.NewCompleteBooking(bookingRepo, auditDispatcher, notifyDispatcher)
	agendaUC := ucBooking.NewListAgenda(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(
		bookingRepo,
		availabilityUC,
		bookableDatesUC,
		solveChainUC,
		commitPlanUC,
	)

	bookingHandler := handlers.NewBookingHandler(
		rescheduleUC,
		cancelUC,
		completeUC,
		agendaUC,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.GET("/:slug/availability/dates", publicHandler.AvailabilityDates)
			publicAPI.POST("/:slug/chain/solve", publicHandler.SolveChain)
			publicAPI.POST("/:slug/bookings", publicHandler.CreateBooking)
		}

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.PATCH("/bookings/:id/reschedule", bookingHandler.Reschedule)
			secured.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/bookings/:id/complete", bookingHandler.Complete)

			secured.GET("/me/agenda", bookingHandler.Agenda)
		}
	}
}
