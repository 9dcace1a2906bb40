package response

import (
	"encoding/json"
	"net/http"
)

// Response 所有 api 回應的格式
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func SuccessJSON(w http.ResponseWriter, status int, data any, msg string) {
	writeJSON(w, status, Response{Message: msg, Data: data})
}

func ErrorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ResponseError{Message: msg})
}

// NoContent 204 不能帶 body
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
