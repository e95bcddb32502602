package main

import (
	"time"

	"donation-import-backend/internal/config"
	"donation-import-backend/internal/models"
	"donation-import-backend/internal/routes"
	"donation-import-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	logger.SetJSONFormat()
	log := logger.WithComponent("server")

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on system env")
	}

	db := config.InitDB()

	db.AutoMigrate(
		&models.Donor{},
		&models.Child{},
		&models.Project{},
		&models.Sponsorship{},
		&models.Donation{},
		&models.ImportBatch{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)

	if err := r.Run(":8080"); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
