package models

import "errors"

// Taxonomie d'erreurs du domaine. Les handlers web et le bot se branchent
// sur errors.Is pour choisir le message correctif, jamais un "erreur" générique.
var (
	// ErrValidation : entrée mal formée (panier vide, quantité non positive,
	// adresse manquante)
	ErrValidation = errors.New("données invalides")

	// ErrNotFound : produit, commande ou ligne de panier inexistant
	ErrNotFound = errors.New("introuvable")

	// ErrInvalidTransition : arête de statut refusée depuis l'état courant
	ErrInvalidTransition = errors.New("transition de statut non autorisée")

	// ErrPermission : l'acteur n'a pas la capacité administrateur requise
	ErrPermission = errors.New("accès refusé")

	// ErrConflict : mutation concurrente a invalidé un contrôle optimiste ;
	// l'appelant recharge l'état et peut réessayer une fois
	ErrConflict = errors.New("conflit d'état")
)
