package model

import "errors"

var (
	// Identity related errors
	ErrDuplicateIdentity = errors.New("identity already exists")
	ErrUnknownIdentity   = errors.New("identity not found")
	ErrInvalidCredential = errors.New("invalid credentials")

	// Token related errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Access related errors
	ErrForbidden = errors.New("forbidden")

	// Store related errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// Catalog related errors
	ErrMovieNotFound       = errors.New("movie not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
