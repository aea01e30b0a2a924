package mongodb

import "errors"

var (
	ErrInsufficientStock = errors.New("insufficient ticket stock")
	ErrNotFound          = errors.New("not found")
)
