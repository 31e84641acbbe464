package library

import "errors"

// Circulation refusals reported by CheckoutBook and CheckinBook.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book already checked out")
	ErrBookNotBorrowed = errors.New("book is not checked out")
)
