package catalog

import "errors"

var (
	ErrMovieNotFound     = errors.New("movie not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrScreeningNotFound = errors.New("screening not found")
	ErrHallNotFound      = errors.New("hall not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
)
