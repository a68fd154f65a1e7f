package main

import (
	"context"
	"log"

	"github.com/lighthouse-crew/profilesync/internal/server"
	"github.com/lighthouse-crew/profilesync/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
