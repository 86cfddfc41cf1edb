package main

import (
	"context"
	"log"

	"pokerclub/config"
	"pokerclub/internal/bot"
	"pokerclub/internal/db"
	clubnats "pokerclub/internal/nats"
	"pokerclub/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := db.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	err = db.Migrate()
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	natsConn, js, err := clubnats.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	err = clubnats.ConfigureStream(js, &cfg.NATS.Stream)
	if err != nil {
		log.Fatalf("Failed to configure JetStream: %v", err)
	}

	events := clubnats.NewPublisher(js)
	srv := server.New(db.GetDB(), events)

	if cfg.Bot.Token != "" {
		go bot.New(&cfg.Bot).Run(context.Background())
	} else {
		log.Println("Bot token not configured, Telegram bot disabled")
	}

	server.StartServer(cfg, srv)
}
