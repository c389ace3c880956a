package model

import "time"

type RegisterRequest struct {
	Name     string `json:"name" validate:"max=100,printable"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// MovieInput is read from multipart form fields named after the json tags.
type MovieInput struct {
	Name        string    `json:"name" validate:"required,max=200,printable"`
	Description string    `json:"description" validate:"max=4000"`
	Language    string    `json:"language" validate:"max=50,printable"`
	Duration    string    `json:"duration" validate:"max=50,printable"`
	PlayingDate time.Time `json:"playing_date" validate:"-"`
	PlayingTime time.Time `json:"playing_time" validate:"-"`
	TicketPrice float64   `json:"ticket_price" validate:"gte=0"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=10"`
	Genre       string    `json:"genre" validate:"max=100,printable"`
	TrailerURL  string    `json:"trailer_url" validate:"omitempty,url,max=500"`
}

type ReservationRequest struct {
	Quantity int     `json:"quantity" validate:"required,gte=1,lte=50"`
	Price    float64 `json:"price" validate:"gte=0"`
	Phone    string  `json:"phone" validate:"required,max=30"`
	MovieID  int64   `json:"movie_id" validate:"required,gt=0"`
	UserID   string  `json:"user_id" validate:"omitempty,uuid"`
}

type MovieQuery struct {
	Sort     string
	Page     int
	PageSize int
}

type PageQuery struct {
	Page     int
	PageSize int
}

type AuditQuery struct {
	Action string
	Email  string
	Status string
	From   string
	To     string
	Page   int
	Limit  int
}
