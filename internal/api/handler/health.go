package handler

import (
	"net/http"

	"github.com/sandria/chatvault/internal/api/response"
)

// Health reports service liveness
func Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}
