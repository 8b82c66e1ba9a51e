package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest changes name and/or password; absent fields are kept
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// User is the public view of an account, without password material
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

// AuthResponse is the data of register and login responses
type AuthResponse struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"` // bearer token
}

// ProfileResponse is the data of profile responses
type ProfileResponse struct {
	User User `json:"user"`
}
