package library

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Library is an in-memory catalog of books and users with borrow/return
// tracking. Lookups scan the collections in insertion order and the first
// match wins. A single lock covers both collections because availability and
// borrowed-list membership change together.
type Library struct {
	mu    sync.RWMutex
	books []*Book
	users []*User

	logger *log.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithLogger attaches l. Circulation refusals are logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(lib *Library) {
		if l != nil {
			lib.logger = l
		}
	}
}

// New returns an empty Library.
func New(opts ...Option) *Library {
	lib := &Library{
		books:  []*Book{},
		users:  []*User{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// ------------------ Books ------------------

func (l *Library) AddBook(b *Book) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books = append(l.books, b)
	l.logger.Debug("book added", "isbn", b.ISBN, "title", b.Title)
}

// RemoveBook drops every book with the given ISBN. Unknown ISBNs are ignored.
// A borrowed book stays in its borrower's list.
func (l *Library) RemoveBook(isbn string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books = filterBooks(l.books, func(b *Book) bool { return b.ISBN != isbn })
}

// SearchBook returns every book whose title or author contains query, or whose
// ISBN equals it. Matching is case-sensitive.
func (l *Library) SearchBook(query string) []*Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return filterBooks(l.books, func(b *Book) bool {
		return strings.Contains(b.Title, query) ||
			strings.Contains(b.Author, query) ||
			b.ISBN == query
	})
}

// FindBook returns the first book with the given ISBN.
func (l *Library) FindBook(isbn string) (*Book, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b := l.findBook(isbn)
	return b, b != nil
}

// Books returns a snapshot of the catalog in insertion order.
func (l *Library) Books() []*Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Book, len(l.books))
	copy(out, l.books)
	return out
}

// IsBookAvailable reports the availability of the first book with the given
// ISBN, or false when there is none.
func (l *Library) IsBookAvailable(isbn string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b := l.findBook(isbn); b != nil {
		return b.Available
	}
	return false
}

// ------------------ Users ------------------

func (l *Library) AddUser(u *User) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = append(l.users, u)
	l.logger.Debug("user added", "id", u.ID, "name", u.Name)
}

// RemoveUser drops every user with the given id. Books the user still holds
// are not released and stay unavailable.
func (l *Library) RemoveUser(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := make([]*User, 0, len(l.users))
	for _, u := range l.users {
		if u.ID != id {
			kept = append(kept, u)
		} else if len(u.borrowed) > 0 {
			l.logger.Warn("removed user still holds books", "id", id, "books", len(u.borrowed))
		}
	}
	l.users = kept
}

// SearchUser returns every user whose name contains query or whose id equals it.
func (l *Library) SearchUser(query string) []*User {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []*User{}
	for _, u := range l.users {
		if strings.Contains(u.Name, query) || u.ID == query {
			out = append(out, u)
		}
	}
	return out
}

// FindUser returns the first user with the given id.
func (l *Library) FindUser(id string) (*User, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u := l.findUser(id)
	return u, u != nil
}

// Users returns a snapshot of the registered users in insertion order.
func (l *Library) Users() []*User {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*User, len(l.users))
	copy(out, l.users)
	return out
}

// Borrower returns the first user holding the first book with the given ISBN.
func (l *Library) Borrower(isbn string) (*User, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b := l.findBook(isbn)
	if b == nil || b.Available {
		return nil, false
	}
	for _, u := range l.users {
		for _, held := range u.borrowed {
			if held == b {
				return u, true
			}
		}
	}
	return nil, false
}

// BorrowedBooks returns the books held by the first user with the given id,
// in borrow order, or nil when there is no such user.
func (l *Library) BorrowedBooks(userID string) []*Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u := l.findUser(userID)
	if u == nil {
		return nil
	}
	return u.BorrowedBooks()
}

// Available reads b's availability under the catalog lock. Use it instead of
// b.Available when other goroutines borrow or return books.
func (l *Library) Available(b *Book) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return b.Available
}

// ------------------ Circulation ------------------

// BorrowBook lends the book to the user and reports whether it happened.
func (l *Library) BorrowBook(userID, isbn string) bool {
	return l.CheckoutBook(userID, isbn) == nil
}

// ReturnBook takes the book back from the user and reports whether it happened.
func (l *Library) ReturnBook(userID, isbn string) bool {
	return l.CheckinBook(userID, isbn) == nil
}

// CheckoutBook is BorrowBook with the refusal reason: ErrUserNotFound,
// ErrBookNotFound or ErrBookUnavailable.
func (l *Library) CheckoutBook(userID, isbn string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, b, err := l.resolve(userID, isbn)
	if err != nil {
		return err
	}
	if !b.Available {
		return l.refuse("checkout", userID, isbn, ErrBookUnavailable)
	}

	u.borrowed = append(u.borrowed, b)
	b.Available = false
	l.logger.Debug("book checked out", "user", userID, "isbn", isbn)
	return nil
}

// CheckinBook is ReturnBook with the refusal reason: ErrUserNotFound,
// ErrBookNotFound or ErrBookNotBorrowed. The returning user does not have to
// be the borrower; every entry with the ISBN is dropped from their list.
func (l *Library) CheckinBook(userID, isbn string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, b, err := l.resolve(userID, isbn)
	if err != nil {
		return err
	}
	if b.Available {
		return l.refuse("checkin", userID, isbn, ErrBookNotBorrowed)
	}

	b.Available = true
	u.borrowed = filterBooks(u.borrowed, func(held *Book) bool { return held.ISBN != isbn })
	l.logger.Debug("book returned", "user", userID, "isbn", isbn)
	return nil
}

// resolve must be called with l.mu held.
func (l *Library) resolve(userID, isbn string) (*User, *Book, error) {
	u := l.findUser(userID)
	if u == nil {
		return nil, nil, l.refuse("lookup", userID, isbn, ErrUserNotFound)
	}
	b := l.findBook(isbn)
	if b == nil {
		return nil, nil, l.refuse("lookup", userID, isbn, ErrBookNotFound)
	}
	return u, b, nil
}

func (l *Library) refuse(op, userID, isbn string, err error) error {
	l.logger.Debug("circulation refused", "op", op, "user", userID, "isbn", isbn, "reason", err)
	return fmt.Errorf("%s %q for user %q: %w", op, isbn, userID, err)
}

func (l *Library) findBook(isbn string) *Book {
	for _, b := range l.books {
		if b.ISBN == isbn {
			return b
		}
	}
	return nil
}

func (l *Library) findUser(id string) *User {
	for _, u := range l.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func filterBooks(books []*Book, keep func(*Book) bool) []*Book {
	out := make([]*Book, 0, len(books))
	for _, b := range books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
