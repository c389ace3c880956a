package model

import "time"

type Movie struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Duration    string    `json:"duration"`
	PlayingDate time.Time `json:"playing_date"`
	PlayingTime time.Time `json:"playing_time"`
	TicketPrice float64   `json:"ticket_price"`
	Rating      float64   `json:"rating"`
	Genre       string    `json:"genre"`
	TrailerURL  string    `json:"trailer_url"`
	ImageURL    string    `json:"image_url"`
}

type MovieListItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Duration string  `json:"duration"`
	Language string  `json:"language"`
	Rating   float64 `json:"rating"`
	Genre    string  `json:"genre"`
	ImageURL string  `json:"image_url"`
}

type MovieSearchItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type Reservation struct {
	ID              int64     `json:"id"`
	Quantity        int       `json:"quantity"`
	Price           float64   `json:"price"`
	Phone           string    `json:"phone"`
	ReservationTime time.Time `json:"reservation_time"`
	MovieID         int64     `json:"movie_id"`
	UserID          string    `json:"user_id"`
}

type ReservationListItem struct {
	ID              int64     `json:"id"`
	ReservationTime time.Time `json:"reservation_time"`
	CustomerName    string    `json:"customer_name"`
	MovieName       string    `json:"movie_name"`
}

type ReservationDetail struct {
	ID              int64     `json:"id"`
	ReservationTime time.Time `json:"reservation_time"`
	CustomerName    string    `json:"customer_name"`
	MovieName       string    `json:"movie_name"`
	Email           string    `json:"email"`
	Quantity        int       `json:"quantity"`
	Price           float64   `json:"price"`
	Phone           string    `json:"phone"`
	PlayingDate     time.Time `json:"playing_date"`
	PlayingTime     time.Time `json:"playing_time"`
}
