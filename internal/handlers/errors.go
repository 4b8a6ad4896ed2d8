package handlers

import (
	"errors"
	"net/http"

	"floralie_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError traduit la taxonomie d'erreurs du domaine en réponses
// HTTP distinctes : le front se branche sur le code pour proposer la
// correction adaptée, jamais un "une erreur est survenue" générique.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": "not_found"})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "invalid_transition"})
	case errors.Is(err, models.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": "permission"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "conflict"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
	}
}
