package handler

import "net/http"

// Health はサーバーの稼働状態を返す。認証不要。
// GET /health, GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "ok",
		"message": "Server is running",
	})
}
