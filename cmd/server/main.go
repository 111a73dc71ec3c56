package main

import (
	"log"

	_ "planora/docs"
	"planora/internal/config"
	"planora/internal/server"
)

// @title           Planora API
// @version         1.0
// @description     API for project management, Kanban boards and external SQL mirroring.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
