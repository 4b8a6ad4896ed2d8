package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floralie_back_end/internal/cart"
	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/config"
	"floralie_back_end/internal/database"
	"floralie_back_end/internal/handlers"
	"floralie_back_end/internal/notify"
	"floralie_back_end/internal/orders"
	"floralie_back_end/internal/routes"
	"floralie_back_end/internal/users"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	config.Load()
	database.ConnectDatabases()
	defer database.CloseScylla()

	directory := users.NewDirectory()
	catalogStore := catalog.NewScyllaStore()
	carts := cart.NewService(cart.NewRedisStore(database.Redis), catalogStore)

	dispatcher := buildDispatcher(directory)
	orderService := orders.NewService(orders.NewScyllaStore(), carts, catalogStore, directory, dispatcher)

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Dependencies{
		Auth:     handlers.NewAuthHandler(directory),
		Products: handlers.NewProductHandler(catalogStore),
		Reviews:  handlers.NewReviewHandler(catalogStore, directory),
		Cart:     handlers.NewCartHandler(carts),
		Orders:   handlers.NewOrderHandler(orderService),
		Admin:    handlers.NewAdminHandler(orderService),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Println("🚀 Serveur Floralie lancé sur le port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Serveur HTTP:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Arrêt du serveur...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("⚠️ Arrêt forcé:", err)
	}

	// Laisser partir les notifications en vol avant de couper
	dispatcher.Wait()
}

// buildDispatcher assemble les canaux de notification disponibles.
// Chaque canal est isolé : un échec Telegram ne bloque jamais l'email,
// et aucun échec ne remonte jusqu'à la commande.
func buildDispatcher(directory *users.Directory) *notify.Dispatcher {
	var channels []notify.Channel

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		api, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			log.Println("⚠️ Bot Telegram indisponible, notifications Telegram désactivées:", err)
		} else {
			channels = append(channels, notify.NewTelegramChannel(api, config.AdminTelegramChatID(), directory))
			log.Println("✅ Canal de notification Telegram actif")
		}
	}

	if config.AdminEmail() != "" {
		channels = append(channels, notify.NewEmailChannel(config.AdminEmail(), directory))
		log.Println("✅ Canal de notification email actif")
	}

	if len(channels) == 0 {
		log.Println("⚠️ Aucun canal de notification configuré")
	}

	return notify.NewDispatcher(10*time.Second, channels...)
}
