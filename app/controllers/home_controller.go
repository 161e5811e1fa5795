package controllers

import "net/http"

// APIVersion is reported by the index route.
const APIVersion = "1.0"

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index describes the API
func Index(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, indexResponse{
		Message: "Blog API",
		Version: APIVersion,
		Endpoints: map[string]string{
			"authors":  "/authors",
			"posts":    "/posts",
			"comments": "/comments",
		},
	})
}
