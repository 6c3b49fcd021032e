// @title           Greenhouse HTTP Service API
// @version         1.0
// @description     Access control and device management for IoT greenhouse controllers

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"greenhouse-http-service/config"
	"greenhouse-http-service/models"
	"greenhouse-http-service/routes"
	"greenhouse-http-service/services"
	"greenhouse-http-service/services/container"
)

func main() {
	if err := config.SetupLogger(); err != nil {
		fmt.Printf("failed to set up logger: %v\n", err)
		os.Exit(1)
	}

	// Missing .env is fine, the variables may come from the environment.
	if err := godotenv.Load(); err != nil {
		config.Warning("could not load .env file: %v", err)
	} else {
		config.Info(".env file loaded")
	}

	cfg := config.GetConfig()

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if cfg.DBMigrationMode == "drop" {
		log.Println("WARNING: running in drop mode, all tables will be recreated")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("drop and recreate failed: %v", err)
		}
	} else {
		if err := autoMigrate(db); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	ensureAdminExists(db, cfg)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)

	// Start the telemetry ingester. The API stays up without it; devices
	// fall back to the HTTP heartbeat endpoint.
	telemetry := serviceContainer.GetService("telemetry").(services.InterfaceTelemetryService)
	if err := telemetry.Connect(); err != nil {
		config.Warning("MQTT ingester unavailable: %v", err)
	}
	telemetry.StartOfflineSweeper(30 * time.Second)

	r := routes.SetupRouter(serviceContainer)

	port := cfg.ServerPort
	if port == "" {
		port = "8080"
	}

	config.Info("server listening on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		config.Error("server failed: %v", err)
		os.Exit(1)
	}
}

// initDB opens the MySQL connection.
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	config.Info("database connection established")
	return db, nil
}

// autoMigrate creates new tables and columns; it never drops anything.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Device{},
		&models.Zone{},
		&models.Topic{},
		&models.DeviceAssignment{},
		&models.Telemetry{},
	)
}

// dropAndRecreateTables drops every table and migrates from scratch.
func dropAndRecreateTables(db *gorm.DB) error {
	db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	defer db.Exec("SET FOREIGN_KEY_CHECKS = 1")

	var tables []string
	if err := db.Raw("SHOW TABLES").Scan(&tables).Error; err != nil {
		return fmt.Errorf("failed to get table names: %w", err)
	}

	for _, table := range tables {
		log.Printf("dropping table %s", table)
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return autoMigrate(db)
}

// ensureAdminExists seeds a platform admin with a home company when the
// users table is empty of admins.
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	var company models.Company
	if err := db.Where("code = ?", "PLATFORM").First(&company).Error; err != nil {
		company = models.Company{
			Name:     "Platform",
			Code:     "PLATFORM",
			IsActive: true,
		}
		if err := db.Create(&company).Error; err != nil {
			log.Printf("could not create platform company: %v", err)
			return
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("could not hash default admin password: %v", err)
		return
	}

	admin := models.User{
		Name:      "Administrator",
		Email:     cfg.DefaultAdminEmail,
		Password:  string(hashedPassword),
		CompanyID: company.ID,
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("could not create default admin: %v", err)
		return
	}

	log.Printf("created default admin account (%s)", admin.Email)
}
