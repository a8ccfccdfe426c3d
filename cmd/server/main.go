package main

import (
	_ "github.com/mirai-garden/plant-backend/docs"
	"github.com/mirai-garden/plant-backend/internal/bootstrap"
)

// @title Plant Backend API
// @version 1.0.0
// @description Plant.id proxy and plant scan service

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Supabase access token, prefixed with "Bearer "

func main() {
	bootstrap.Run()
}
