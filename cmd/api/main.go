package main

import (
	"context"
	"log"

	"github.com/Apurer/dealership-sync/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("dealership sync API exited: %v", err)
	}
}
