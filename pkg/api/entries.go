package api

import (
	"encoding/json"
	"time"
)

// Owner is the owner summary embedded in every entry
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Entry представляет запись журнала в ответах API
type Entry struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Owner       Owner     `json:"owner"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// UpdateEntryRequest is the JSON body of PUT /api/entries/{id}.
// Coordinates accept both numbers and numeric strings.
type UpdateEntryRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Latitude    json.Number `json:"latitude"`
	Longitude   json.Number `json:"longitude"`
}

// Pagination is the listing summary
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalEntries   int64 `json:"totalEntries"`
	EntriesPerPage int   `json:"entriesPerPage"`
}

// EntryList is the data of GET /api/entries
type EntryList struct {
	Entries    []Entry    `json:"entries"`
	Pagination Pagination `json:"pagination"`
}

// EntryResponse is the data of single-entry responses
type EntryResponse struct {
	Entry Entry `json:"entry"`
}
