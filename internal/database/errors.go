package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a new shortened URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when no URL record matches the lookup,
	// including records owned by a different caller.
	ErrURLNotFound = errors.New("url not found")
)
