package main

import (
	"context"
	"log"

	"github.com/moneta-site/go-calculators-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("calculators api: %v", err)
	}
}
