package library

import "github.com/google/uuid"

// Book represents a catalog item and its current availability.
// The catalog and a borrower share the same *Book, so an availability change
// is observed from both sides.
type Book struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Available bool   `json:"available"`
}

// NewBook returns an available book. Arguments are not validated.
func NewBook(title, author, isbn string) *Book {
	return &Book{Title: title, Author: author, ISBN: isbn, Available: true}
}

// User represents a library patron and the books they currently hold.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	borrowed []*Book // borrow order
}

// NewUser returns a user with a fresh v4 UUID and nothing borrowed.
func NewUser(name string) *User {
	return &User{ID: uuid.New().String(), Name: name, borrowed: []*Book{}}
}

// BorrowedBooks returns the user's borrowed books in borrow order.
// The slice is a copy; the books themselves are shared with the catalog.
// It is not synchronized with a Library; concurrent callers use
// Library.BorrowedBooks.
func (u *User) BorrowedBooks() []*Book {
	out := make([]*Book, len(u.borrowed))
	copy(out, u.borrowed)
	return out
}
