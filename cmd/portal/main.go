package main

import (
	"log"

	"github.com/MrSnakeDoc/portal/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ portal failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ portal failed to start: %v", err)
	}
}
