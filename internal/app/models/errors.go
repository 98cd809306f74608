package models

import "errors"

// Domain specific errors for authentication, authorization, and checkout.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrNotPurchased    = errors.New("book has not been purchased")
	ErrVerification    = errors.New("payment verification failed")
)
