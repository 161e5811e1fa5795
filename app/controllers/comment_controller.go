package controllers

import (
	"net/http"
	"strconv"

	"inkwell/app/models"
	"inkwell/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// Index lists comments, optionally only those on ?post_id=N
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	var postID *int
	if raw := r.URL.Query().Get("post_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			sendError(w, http.StatusBadRequest, "Invalid post_id")
			return
		}
		postID = &id
	}

	comments, err := cc.commentService.List(r.Context(), postID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Show returns a single comment
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindComment)
	if err != nil {
		handleError(w, r, err)
		return
	}

	comment, err := cc.commentService.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Create accepts post_id, author_id, commenter_name and body
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CommentInput
	if err := decodeBody(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	comment, err := cc.commentService.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Update accepts only body
func (cc *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindComment)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var patch services.CommentPatch
	if err := decodeBody(r, &patch); err != nil {
		handleError(w, r, err)
		return
	}

	comment, err := cc.commentService.Update(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Delete removes a single comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindComment)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := cc.commentService.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
