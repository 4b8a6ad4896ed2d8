package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"floralie_back_end/internal/config"
	"floralie_back_end/internal/middleware"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler gère l'inscription, la connexion et le profil, ainsi que
// la liaison du compte avec Telegram.
type AuthHandler struct {
	directory *users.Directory
}

func NewAuthHandler(directory *users.Directory) *AuthHandler {
	return &AuthHandler{directory: directory}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email ou mot de passe invalide"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := h.directory.FindByEmail(c.Request.Context(), email); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du compte"})
		return
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Password:  string(hash),
		Role:      "user",
		CreatedAt: time.Now(),
	}
	if err := h.directory.SaveUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du compte"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du jeton"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	user, err := h.directory.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du jeton"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.directory.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"telegram_linked": user.TelegramChatID != "",
	})
}

// POST /api/auth/telegram/link : génère un lien profond vers le bot avec
// un jeton à usage unique, renvoyé aussi en QR code à scanner.
func (h *AuthHandler) TelegramLink(c *gin.Context) {
	token, err := h.directory.TelegramLinkToken(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du lien Telegram"})
		return
	}

	botName := config.Getenv("TELEGRAM_BOT_USERNAME", "FloralieBot")
	link := fmt.Sprintf("https://t.me/%s?start=%s", botName, token)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"link":       link,
		"qr_png":     png,
		"expires_in": "15m",
	})
}
