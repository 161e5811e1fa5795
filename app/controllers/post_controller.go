package controllers

import (
	"context"
	"net/http"

	"inkwell/app/models"
	"inkwell/app/services"
	"inkwell/app/views"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index lists posts, newest first. ?status=published or ?status=drafts
// narrows the list; any other value lists everything.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	filter := models.ParsePostFilter(r.URL.Query().Get("status"))

	posts, err := pc.postService.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Show returns a post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindPost)
	if err != nil {
		handleError(w, r, err)
		return
	}

	post, err := pc.postService.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create accepts author_id, title, body and published_at
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeBody(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	post, err := pc.postService.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update merges title, body and published_at onto the post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindPost)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var patch services.PostPatch
	if err := decodeBody(r, &patch); err != nil {
		handleError(w, r, err)
		return
	}

	post, err := pc.postService.Update(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Publish stamps the post with the current time
func (pc *PostController) Publish(w http.ResponseWriter, r *http.Request) {
	pc.transition(w, r, pc.postService.Publish)
}

// Unpublish turns the post back into a draft
func (pc *PostController) Unpublish(w http.ResponseWriter, r *http.Request) {
	pc.transition(w, r, pc.postService.Unpublish)
}

// Delete removes the post and its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, models.KindPost)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := pc.postService.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (pc *PostController) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id int) (*views.Post, error)) {
	id, err := pathID(r, models.KindPost)
	if err != nil {
		handleError(w, r, err)
		return
	}

	post, err := apply(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}
