package FiberConfig

import (
	"fmt"
	"log"
	"time"

	"Tempus/Config"
	"Tempus/Controllers"
	"Tempus/Models"
	"Tempus/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	attendanceController := Controllers.NewAttendanceController(db)
	userController := Controllers.NewUserController(db)
	reportController := Controllers.NewReportController(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group
	api := app.Group("/api")

	// Auth + user routes
	users := api.Group("/users")
	users.Post("/login", Controllers.Login)
	users.Post("/register", Controllers.Register)
	users.Post("/logout", Controllers.Logout)
	users.Get("/validate-token", middleware.Verify(Models.RoleUser), Controllers.ValidateToken)
	users.Get("/", middleware.Verify(Models.RoleManager), userController.FetchUsers)

	// ID-based routes go last so the fixed paths above keep matching
	users.Get("/:id", middleware.Verify(Models.RoleUser), userController.GetUser)
	users.Put("/:id", middleware.Verify(Models.RoleUser), userController.UpdateUser)
	users.Delete("/:id", middleware.Verify(Models.RoleAdmin), userController.DeleteUser)
	users.Post("/:id/avatar", middleware.Verify(Models.RoleUser), userController.UploadAvatar)

	// Attendance routes
	attendance := api.Group("/attendance", middleware.Verify(Models.RoleUser))
	attendance.Post("/checkin", attendanceController.CheckIn)
	attendance.Post("/checkout", attendanceController.CheckOut)
	attendance.Get("/today", attendanceController.GetToday)
	attendance.Get("/history", attendanceController.GetHistory)

	// Admin routes
	attendance.Get("/statistics", middleware.Verify(Models.RoleAdmin), attendanceController.GetStatistics)
	attendance.Get("/all", middleware.Verify(Models.RoleAdmin), attendanceController.GetAll)
	attendance.Get("/export", middleware.Verify(Models.RoleAdmin), reportController.ExportAttendance)
	attendance.Put("/:id", middleware.Verify(Models.RoleAdmin), attendanceController.UpdateRecord)
	attendance.Delete("/:id", middleware.Verify(Models.RoleAdmin), attendanceController.DeleteRecord)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(middleware.ErrorLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,  // Max age for preflight requests caching (5 minutes)
	}))

	SetupRoutes(app, Models.DB)

	// Serve resized avatars
	cfg := Config.Get()
	app.Static("/Avatars", cfg.AvatarDir, fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	log.Fatal(app.Listen(":" + cfg.Port))
}
