package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"floralie_back_end/internal/database"
	"floralie_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userCacheTTL = 5 * time.Minute

// Directory résout les profils utilisateurs : email, chat Telegram lié,
// capacité administrateur. Lecture ScyllaDB avec cache Redis court.
type Directory struct{}

func NewDirectory() *Directory {
	return &Directory{}
}

// GetUser récupère un utilisateur depuis Redis ou ScyllaDB.
func (d *Directory) GetUser(ctx context.Context, userID string) (*models.User, error) {
	key := "user:" + userID

	// 1. Essayer le cache Redis
	if database.Redis != nil {
		data, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			var user models.User
			if json.Unmarshal([]byte(data), &user) == nil {
				return &user, nil
			}
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: utilisateur %s", models.ErrNotFound, userID)
	}

	user := models.User{ID: userID}
	err = session.Query(`SELECT email, name, password, role, telegram_chat_id, created_at
		FROM users WHERE user_id = ?`, gocql.UUID(uid)).WithContext(ctx).Scan(
		&user.Email, &user.Name, &user.Password, &user.Role, &user.TelegramChatID, &user.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, fmt.Errorf("%w: utilisateur %s", models.ErrNotFound, userID)
		}
		return nil, err
	}

	// 3. Mettre en cache
	if database.Redis != nil {
		jsonData, _ := json.Marshal(user)
		database.Redis.Set(ctx, key, jsonData, userCacheTTL)
	}

	return &user, nil
}

// FindByEmail cherche un utilisateur par email (login).
func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var user models.User
	var uid gocql.UUID
	iter := session.Query(`SELECT user_id, email, name, password, role, telegram_chat_id, created_at
		FROM users`).WithContext(ctx).Iter()
	for iter.Scan(&uid, &user.Email, &user.Name, &user.Password, &user.Role, &user.TelegramChatID, &user.CreatedAt) {
		if user.Email == email {
			user.ID = uid.String()
			iter.Close()
			return &user, nil
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: email %s", models.ErrNotFound, email)
}

// SaveUser insère ou met à jour un utilisateur et invalide son cache.
func (d *Directory) SaveUser(ctx context.Context, user models.User) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	uid, err := uuid.Parse(user.ID)
	if err != nil {
		return fmt.Errorf("id utilisateur invalide: %v", err)
	}

	if err := session.Query(`INSERT INTO users (user_id, email, name, password, role, telegram_chat_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gocql.UUID(uid), user.Email, user.Name, user.Password, user.Role,
		user.TelegramChatID, user.CreatedAt).WithContext(ctx).Exec(); err != nil {
		return err
	}

	d.invalidate(ctx, user.ID)
	return nil
}

// LinkTelegram enregistre l'identifiant de chat Telegram dans le profil.
func (d *Directory) LinkTelegram(ctx context.Context, userID, chatID string) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("%w: utilisateur %s", models.ErrNotFound, userID)
	}

	if err := session.Query(`UPDATE users SET telegram_chat_id = ? WHERE user_id = ?`,
		chatID, gocql.UUID(uid)).WithContext(ctx).Exec(); err != nil {
		return err
	}

	d.invalidate(ctx, userID)
	return nil
}

func (d *Directory) invalidate(ctx context.Context, userID string) {
	if database.Redis != nil {
		database.Redis.Del(ctx, "user:"+userID)
	}
}

// ChatID retourne l'identifiant de chat Telegram lié, "" si aucun.
func (d *Directory) ChatID(ctx context.Context, userID string) (string, error) {
	user, err := d.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.TelegramChatID, nil
}

// Email retourne l'adresse email du profil.
func (d *Directory) Email(ctx context.Context, userID string) (string, error) {
	user, err := d.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// IsAuthorizedAdmin indique si l'acteur a la capacité administrateur.
func (d *Directory) IsAuthorizedAdmin(ctx context.Context, actorID string) (bool, error) {
	user, err := d.GetUser(ctx, actorID)
	if err != nil {
		return false, nil // acteur inconnu = pas administrateur
	}
	return user.Role == "admin", nil
}

// TelegramLinkToken génère un jeton éphémère pour lier un compte web à un
// chat Telegram via /start <token>. Le jeton vit 15 minutes dans Redis.
func (d *Directory) TelegramLinkToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := database.Redis.Set(ctx, "tglink:"+token, userID, 15*time.Minute).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeTelegramLinkToken résout puis invalide un jeton de liaison.
func (d *Directory) ConsumeTelegramLinkToken(ctx context.Context, token string) (string, error) {
	userID, err := database.Redis.GetDel(ctx, "tglink:"+token).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("%w: jeton de liaison inconnu ou expiré", models.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
