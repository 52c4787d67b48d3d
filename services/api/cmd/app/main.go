package main

import (
	"cognition-berries/pkg/config"
	app "cognition-berries/services/api/internal/app"

	_ "cognition-berries/services/api/docs" // Swagger docs
)

// @title           Cognition Berries API
// @version         1.0
// @description     Course catalogue, image hosting, forum, checkout and learning progress for Cognition Berries.

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a Firebase ID token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
