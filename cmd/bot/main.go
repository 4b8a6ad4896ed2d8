package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floralie_back_end/internal/bot"
	"floralie_back_end/internal/cart"
	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/config"
	"floralie_back_end/internal/database"
	"floralie_back_end/internal/notify"
	"floralie_back_end/internal/orders"
	"floralie_back_end/internal/users"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	config.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN manquant dans .env")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal("❌ Connexion à l'API Telegram impossible:", err)
	}

	database.ConnectDatabases()
	defer database.CloseScylla()

	directory := users.NewDirectory()
	catalogStore := catalog.NewScyllaStore()
	carts := cart.NewService(cart.NewRedisStore(database.Redis), catalogStore)

	// Le bot notifie aussi par Telegram et email, comme le serveur web
	var channels []notify.Channel
	channels = append(channels, notify.NewTelegramChannel(api, config.AdminTelegramChatID(), directory))
	if config.AdminEmail() != "" {
		channels = append(channels, notify.NewEmailChannel(config.AdminEmail(), directory))
	}
	dispatcher := notify.NewDispatcher(10*time.Second, channels...)

	orderService := orders.NewService(orders.NewScyllaStore(), carts, catalogStore, directory, dispatcher)
	flow := bot.NewFlow(catalogStore, orderService, config.OpeningHour(), config.ClosingHour())

	states := bot.StateStore(bot.NewMemoryStateStore())
	if database.Redis != nil {
		states = bot.NewRedisStateStore(database.Redis)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	bot.New(api, flow, states, catalogStore, orderService, directory).Run(ctx)
	dispatcher.Wait()
}
