package Models

import (
	"fmt"
	"log"

	"Tempus/Config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database selected by the configuration and runs
// the migrations. sqlite is the default; postgres and mysql take their
// DSN from DATABASE_URL.
func Connect() {
	cfg := Config.Get()

	connection, err := open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	DB = connection

	if err := DB.AutoMigrate(
		&User{}, // Users first, attendance references them
		&AttendanceRecord{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seedAdmin(cfg)
}

func open(cfg *Config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	case "mysql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the mysql driver")
		}
		return gorm.Open(mysql.Open(cfg.DatabaseURL), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// seedAdmin creates the bootstrap administrator when ADMIN_USERNAME and
// ADMIN_PASSWORD are set and no user with that name exists yet.
func seedAdmin(cfg *Config.Config) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return
	}

	var count int64
	DB.Model(&User{}).Where("username = ?", cfg.AdminUsername).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := User{
		Username: cfg.AdminUsername,
		Password: string(hashed),
		Role:     RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Printf("Seeded admin user %q", cfg.AdminUsername)
}
