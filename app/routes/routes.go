package routes

import (
	"encoding/json"
	"net/http"

	"inkwell/app/controllers"
	"inkwell/app/middleware"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Options configures the router.
type Options struct {
	Logger zerolog.Logger
	// PermittedHosts lists the Host values served. Empty permits all.
	PermittedHosts []string
}

// SetupRoutes defines the API routes over blog. Every route is served both at
// the root and under /api.
func SetupRoutes(blog *services.Blog, opts Options) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	chain := []mux.MiddlewareFunc{
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		middleware.Recoverer,
		middleware.PermittedHosts(opts.PermittedHosts),
		middleware.ContentTypeJSON,
	}
	router.Use(chain...)

	// mux skips middleware for unmatched requests.
	wrap := func(h http.Handler) http.Handler {
		for i := len(chain) - 1; i >= 0; i-- {
			h = chain[i](h)
		}
		return h
	}
	router.NotFoundHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	}))
	router.MethodNotAllowedHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}))

	authorController := controllers.NewAuthorController(blog.Authors)
	postController := controllers.NewPostController(blog.Posts)
	commentController := controllers.NewCommentController(blog.Comments)

	register := func(r *mux.Router) {
		r.HandleFunc("/", controllers.Index).Methods("GET")

		// Authors
		r.HandleFunc("/authors", authorController.Index).Methods("GET")
		r.HandleFunc("/authors", authorController.Create).Methods("POST")
		r.HandleFunc("/authors/{id:[0-9]+}", authorController.Show).Methods("GET")
		r.HandleFunc("/authors/{id:[0-9]+}", authorController.Update).Methods("PUT")
		r.HandleFunc("/authors/{id:[0-9]+}", authorController.Delete).Methods("DELETE")

		// Posts
		r.HandleFunc("/posts", postController.Index).Methods("GET")
		r.HandleFunc("/posts", postController.Create).Methods("POST")
		r.HandleFunc("/posts/{id:[0-9]+}", postController.Show).Methods("GET")
		r.HandleFunc("/posts/{id:[0-9]+}", postController.Update).Methods("PUT")
		r.HandleFunc("/posts/{id:[0-9]+}", postController.Delete).Methods("DELETE")
		r.HandleFunc("/posts/{id:[0-9]+}/publish", postController.Publish).Methods("POST")
		r.HandleFunc("/posts/{id:[0-9]+}/unpublish", postController.Unpublish).Methods("POST")

		// Comments
		r.HandleFunc("/comments", commentController.Index).Methods("GET")
		r.HandleFunc("/comments", commentController.Create).Methods("POST")
		r.HandleFunc("/comments/{id:[0-9]+}", commentController.Show).Methods("GET")
		r.HandleFunc("/comments/{id:[0-9]+}", commentController.Update).Methods("PUT")
		r.HandleFunc("/comments/{id:[0-9]+}", commentController.Delete).Methods("DELETE")
	}

	register(router.PathPrefix("/api").Subrouter())
	register(router)

	return router
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
