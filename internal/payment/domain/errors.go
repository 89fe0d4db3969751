package domain

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidItem       = errors.New("invalid order item")
	ErrInvalidOrder      = errors.New("invalid order")
)
