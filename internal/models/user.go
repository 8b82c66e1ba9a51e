package models

import "time"

// User представляет владельца журнала
type User struct {
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ID           string    `json:"id"`    // UUID пользователя
	Name         string    `json:"name"`  // отображаемое имя, 1-50 символов
	Email        string    `json:"email"` // уникальный, в нижнем регистре
	PasswordHash string    `json:"-"`     // bcrypt хеш, наружу не отдается
}

// Owner is the public projection of a user embedded into entries.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Owner returns the public summary of u.
func (u *User) Owner() Owner {
	return Owner{ID: u.ID, Name: u.Name, Email: u.Email}
}
