package main

import (
	"log"

	"Tempus/Config"
	"Tempus/FiberConfig"
	"Tempus/Models"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using environment as-is")
	}
	Config.Load()

	Models.Connect()
	FiberConfig.FiberConfig()
}
