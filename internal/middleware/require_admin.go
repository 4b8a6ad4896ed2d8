package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin garde les routes d'administration : suivi global des
// commandes, transitions de statut, gestion du catalogue, rapports.
// À monter après AuthRequired, qui pose le rôle dans le contexte.
func RequireAdmin(c *gin.Context) {
	if c.GetString("role") != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Accès réservé aux administrateurs",
			"kind":  "permission",
		})
		return
	}
	c.Next()
}
