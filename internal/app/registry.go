package app

import (
	"database/sql"

	"github.com/SiwoTech/asistencias/internal/attendance"
	"github.com/SiwoTech/asistencias/internal/autocheckout"
	"github.com/SiwoTech/asistencias/internal/checkzone"
	"github.com/SiwoTech/asistencias/internal/employee"
	"github.com/SiwoTech/asistencias/internal/messaging/kafka"
	"github.com/SiwoTech/asistencias/internal/middleware"
	"github.com/SiwoTech/asistencias/internal/mobileauth"
	"github.com/SiwoTech/asistencias/internal/payroll"
	"github.com/SiwoTech/asistencias/internal/schedule"
	"github.com/SiwoTech/asistencias/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	zoneRepo := checkzone.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	autocheckoutRepo := autocheckout.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	mobileRepo := mobileauth.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	cfgStore := config.NewStore(gormDB)

	// --- Services ---
	mobileService := mobileauth.NewService(db, mobileRepo, employeeRepo, cfgStore)
	zoneService := checkzone.NewService(zoneRepo)
	scheduleService := schedule.NewService(db, scheduleRepo, employeeRepo)
	attendanceService := attendance.NewService(db, attendanceRepo, employeeRepo, zoneRepo, scheduleRepo, outboxRepo, cfgStore)
	autocheckoutService := autocheckout.NewService(db, autocheckoutRepo, attendanceRepo, employeeRepo, outboxRepo, cfgStore)
	payrollService := payroll.NewService(db, payrollRepo, employeeRepo, attendanceRepo, outboxRepo, cfgStore, rdb)

	// --- Handlers ---
	mobileHandler := mobileauth.NewHandler(mobileService)
	zoneHandler := checkzone.NewHandler(zoneService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	autocheckoutHandler := autocheckout.NewHandler(autocheckoutService)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb)

	mobileAuth := middleware.MobileAuth(mobileService)
	loginLimiter := middleware.RateLimitByIP(rate.Limit(1), 5)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		mobileauth.RegisterRoutes(api, mobileHandler, loginLimiter)
		checkzone.RegisterRoutes(api, zoneHandler)
		schedule.RegisterRoutes(api, scheduleHandler)
		attendance.RegisterRoutes(api, attendanceHandler, mobileAuth)
		autocheckout.RegisterRoutes(api, autocheckoutHandler)
		payroll.RegisterRoutes(api, payrollHandler, rdb)
	}

	return nil
}
