package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// Getenv retourne la variable d'environnement ou une valeur par défaut.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetenvInt retourne la variable convertie en entier ou une valeur par défaut.
func GetenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s=%q n'est pas un entier, valeur par défaut %d utilisée", key, v, fallback)
		return fallback
	}
	return n
}

// OpeningHour / ClosingHour : fenêtre d'ouverture du bot de commande
// (heure locale du déploiement). En dehors de cette fenêtre, le bot
// refuse les nouvelles commandes au lieu de les mettre en attente.
func OpeningHour() int { return GetenvInt("SHOP_OPENING_HOUR", 9) }
func ClosingHour() int { return GetenvInt("SHOP_CLOSING_HOUR", 20) }

// AdminEmail : destinataire des emails de création de commande.
func AdminEmail() string { return os.Getenv("ADMIN_EMAIL") }

// AdminTelegramChatID : chat Telegram notifié à chaque création de commande.
func AdminTelegramChatID() string { return os.Getenv("ADMIN_TELEGRAM_CHAT_ID") }
