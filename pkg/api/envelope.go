// Package api описывает JSON формат HTTP API, общий для сервера и клиента
package api

import "encoding/json"

// Response is the success envelope: {success:true, message?, data}
type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// RawResponse is Response as seen by a client before data is decoded
type RawResponse struct {
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Success bool            `json:"success"`
}

// FieldError описывает ошибку валидации одного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Code    string       `json:"code"`             // машинный код, например EXPIRED_TOKEN
	Message string       `json:"message"`          // сообщение для пользователя
	Stack   string       `json:"stack,omitempty"`  // только в development
	Errors  []FieldError `json:"errors,omitempty"` // ошибки по полям
	Success bool         `json:"success"`
}

// HealthResponse представляет ответ GET /health
type HealthResponse struct {
	Timestamp     string `json:"timestamp"`
	Message       string `json:"message"`
	Environment   string `json:"environment"`
	Version       string `json:"version"`
	Success       bool   `json:"success"`
	Authenticated bool   `json:"authenticated"`
}
