package controllers

import (
	"net/http"

	"inkwell/app/models"
	"inkwell/app/services"
)

// AuthorController handles HTTP requests for authors
type AuthorController struct {
	authorService *services.AuthorService
}

// NewAuthorController creates a new AuthorController
func NewAuthorController(authorService *services.AuthorService) *AuthorController {
	return &AuthorController{authorService: authorService}
}

// Index lists all authors
func (ac *AuthorController) Index(w http.ResponseWriter, r *http.Request) {
	authors, err := ac.authorService.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, authors)
}

// Show returns an author with their posts
func (ac *AuthorController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindAuthor)
	if err != nil {
		handleError(w, r, err)
		return
	}

	author, err := ac.authorService.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, author)
}

// Create accepts name, email and bio
func (ac *AuthorController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.AuthorInput
	if err := decodeBody(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	author, err := ac.authorService.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, author)
}

// Update merges name, email and bio onto the author
func (ac *AuthorController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindAuthor)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var patch services.AuthorPatch
	if err := decodeBody(r, &patch); err != nil {
		handleError(w, r, err)
		return
	}

	author, err := ac.authorService.Update(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, author)
}

// Delete removes the author and everything they own
func (ac *AuthorController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindAuthor)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := ac.authorService.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
