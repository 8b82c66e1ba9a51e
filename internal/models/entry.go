package models

import (
	"math"
	"time"
)

// Entry представляет запись журнала: фото + координаты + подпись
type Entry struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Owner       Owner     `json:"owner"`       // заполняется при чтении, в таблице хранится только user_id
	ID          string    `json:"id"`          // UUID записи
	Title       string    `json:"title"`       // 1-100 символов
	Description string    `json:"description"` // до 500 символов
	ImageURL    string    `json:"imageUrl"`    // неизменяемая ссылка на изображение
	ImageKey    string    `json:"-"`           // ключ в хранилище изображений
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// EntryFields holds the mutable, client-supplied part of an entry.
type EntryFields struct {
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
}

// Page describes one page of an owner's entries.
type Page struct {
	Number int // 1-indexed
	Limit  int
}

// Offset returns the number of rows skipped before this page.
// It saturates at math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// DateRange is an inclusive createdAt interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Pagination is the summary returned alongside a listing.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalEntries   int64 `json:"totalEntries"`
	EntriesPerPage int   `json:"entriesPerPage"`
}

// NewPagination derives totalPages = ceil(total/limit).
func NewPagination(page Page, total int64) Pagination {
	pages := 0
	if page.Limit > 0 {
		pages = int((total + int64(page.Limit) - 1) / int64(page.Limit))
	}
	return Pagination{
		CurrentPage:    page.Number,
		TotalPages:     pages,
		TotalEntries:   total,
		EntriesPerPage: page.Limit,
	}
}
