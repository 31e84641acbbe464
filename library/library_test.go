package library

import (
	"bytes"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLibrary returns the two-book, two-user sample catalog.
func newLibrary(t *testing.T) (*Library, *User, *User) {
	t.Helper()
	lib := New()
	lib.AddBook(NewBook("The Hobbit", "J.R.R. Tolkien", "75230"))
	lib.AddBook(NewBook("Harry Potter", "J.K. Rowling", "8970979"))
	john := NewUser("John Doe")
	scott := NewUser("Scott Smith")
	lib.AddUser(john)
	lib.AddUser(scott)
	return lib, john, scott
}

func titles(books []*Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestNewBookIsAvailable(t *testing.T) {
	b := NewBook("", "", "")
	assert.True(t, b.Available)
}

func TestNewUserAssignsUUID(t *testing.T) {
	a := NewUser("Alice")
	b := NewUser("Alice")

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.BorrowedBooks())
}

func TestSearchBook(t *testing.T) {
	lib, _, _ := newLibrary(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title substring", query: "Pott", want: []string{"Harry Potter"}},
		{name: "exact isbn", query: "75230", want: []string{"The Hobbit"}},
		{name: "author substring", query: "Tolkien", want: []string{"The Hobbit"}},
		{name: "shared author prefix", query: "J.", want: []string{"The Hobbit", "Harry Potter"}},
		{name: "isbn prefix does not match", query: "7523", want: []string{}},
		{name: "case sensitive", query: "pott", want: []string{}},
		{name: "empty query matches all titles", query: "", want: []string{"The Hobbit", "Harry Potter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lib.SearchBook(tt.query)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestSearchBookFindsEveryAddedISBN(t *testing.T) {
	lib := New()
	var added []*Book
	for _, isbn := range []string{"1", "22", "333", "22"} {
		b := NewBook("T"+isbn, "A", isbn)
		lib.AddBook(b)
		added = append(added, b)
	}
	for _, b := range added {
		assert.Contains(t, lib.SearchBook(b.ISBN), b)
	}
}

func TestRemoveBook(t *testing.T) {
	lib, _, _ := newLibrary(t)
	lib.AddBook(NewBook("The Hobbit (2nd ed.)", "J.R.R. Tolkien", "75230"))

	lib.RemoveBook("missing")
	assert.Len(t, lib.Books(), 3)

	lib.RemoveBook("75230")
	assert.Equal(t, []string{"Harry Potter"}, titles(lib.Books()))
}

func TestSearchUser(t *testing.T) {
	lib, john, scott := newLibrary(t)

	assert.Equal(t, []*User{john}, lib.SearchUser("John"))
	assert.Equal(t, []*User{scott}, lib.SearchUser(scott.ID))
	assert.Equal(t, []*User{john, scott}, lib.SearchUser("o"))
	assert.Empty(t, lib.SearchUser(scott.ID[:8]))
	assert.NotNil(t, lib.SearchUser("nobody"))
}

func TestRemoveUser(t *testing.T) {
	lib, john, scott := newLibrary(t)

	lib.RemoveUser("missing")
	assert.Equal(t, []*User{john, scott}, lib.Users())

	lib.RemoveUser(john.ID)
	assert.Equal(t, []*User{scott}, lib.Users())
}

func TestBorrowAndReturn(t *testing.T) {
	lib, john, _ := newLibrary(t)

	require.True(t, lib.BorrowBook(john.ID, "75230"))
	assert.False(t, lib.IsBookAvailable("75230"))
	require.Len(t, john.BorrowedBooks(), 1)
	hobbit, ok := lib.FindBook("75230")
	require.True(t, ok)
	assert.Same(t, hobbit, john.BorrowedBooks()[0])

	require.True(t, lib.ReturnBook(john.ID, "75230"))
	assert.True(t, lib.IsBookAvailable("75230"))
	assert.Empty(t, john.BorrowedBooks())
}

func TestBorrowTwice(t *testing.T) {
	lib, john, scott := newLibrary(t)

	require.True(t, lib.BorrowBook(john.ID, "8970979"))
	assert.False(t, lib.BorrowBook(john.ID, "8970979"))
	assert.False(t, lib.BorrowBook(scott.ID, "8970979"))
	assert.Len(t, john.BorrowedBooks(), 1)
	assert.Empty(t, scott.BorrowedBooks())
}

func TestReturnWithoutBorrow(t *testing.T) {
	lib, john, _ := newLibrary(t)

	assert.False(t, lib.ReturnBook(john.ID, "75230"))
	assert.True(t, lib.IsBookAvailable("75230"))
	assert.Empty(t, john.BorrowedBooks())
}

func TestCirculationErrors(t *testing.T) {
	lib, john, scott := newLibrary(t)
	require.NoError(t, lib.CheckoutBook(john.ID, "75230"))

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"checkout unknown user", func() error { return lib.CheckoutBook("nobody", "75230") }, ErrUserNotFound},
		{"checkout unknown book", func() error { return lib.CheckoutBook(john.ID, "0") }, ErrBookNotFound},
		{"checkout lent book", func() error { return lib.CheckoutBook(scott.ID, "75230") }, ErrBookUnavailable},
		{"checkin unknown user", func() error { return lib.CheckinBook("nobody", "75230") }, ErrUserNotFound},
		{"checkin unknown book", func() error { return lib.CheckinBook(john.ID, "0") }, ErrBookNotFound},
		{"checkin available book", func() error { return lib.CheckinBook(john.ID, "8970979") }, ErrBookNotBorrowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestFirstMatchWins(t *testing.T) {
	lib, john, _ := newLibrary(t)
	dup := NewBook("The Hobbit (copy)", "J.R.R. Tolkien", "75230")
	lib.AddBook(dup)

	require.True(t, lib.BorrowBook(john.ID, "75230"))
	assert.True(t, dup.Available)
	assert.False(t, lib.IsBookAvailable("75230"))
	assert.False(t, lib.BorrowBook(john.ID, "75230"))
}

func TestIsBookAvailableUnknown(t *testing.T) {
	lib, _, _ := newLibrary(t)
	assert.False(t, lib.IsBookAvailable("nope"))
}

func TestBorrower(t *testing.T) {
	lib, john, _ := newLibrary(t)

	_, ok := lib.Borrower("75230")
	assert.False(t, ok)

	require.True(t, lib.BorrowBook(john.ID, "75230"))
	u, ok := lib.Borrower("75230")
	require.True(t, ok)
	assert.Same(t, john, u)
}

// Known limitation: removing a borrower does not release their books.
func TestRemoveUserKeepsBookUnavailable(t *testing.T) {
	lib, john, scott := newLibrary(t)
	require.True(t, lib.BorrowBook(john.ID, "75230"))

	lib.RemoveUser(john.ID)

	assert.False(t, lib.IsBookAvailable("75230"))
	_, ok := lib.Borrower("75230")
	assert.False(t, ok)
	assert.False(t, lib.BorrowBook(scott.ID, "75230"))
}

func TestRemoveBorrowedBookStaysWithUser(t *testing.T) {
	lib, john, _ := newLibrary(t)
	require.True(t, lib.BorrowBook(john.ID, "75230"))

	lib.RemoveBook("75230")

	assert.Len(t, john.BorrowedBooks(), 1)
	assert.False(t, lib.ReturnBook(john.ID, "75230"))
}

func TestReturnByAnotherUser(t *testing.T) {
	lib, john, scott := newLibrary(t)
	require.True(t, lib.BorrowBook(john.ID, "75230"))

	require.True(t, lib.ReturnBook(scott.ID, "75230"))
	assert.True(t, lib.IsBookAvailable("75230"))
	assert.Len(t, john.BorrowedBooks(), 1)
}

func TestLoggerRecordsRefusals(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	lib := New(WithLogger(logger))

	assert.False(t, lib.BorrowBook("ghost", "1"))
	assert.Contains(t, buf.String(), "circulation refused")
}

func TestLockedReads(t *testing.T) {
	lib, john, _ := newLibrary(t)

	assert.Nil(t, lib.BorrowedBooks("nobody"))
	assert.Empty(t, lib.BorrowedBooks(john.ID))

	require.True(t, lib.BorrowBook(john.ID, "75230"))
	hobbit, ok := lib.FindBook("75230")
	require.True(t, ok)
	assert.False(t, lib.Available(hobbit))
	assert.Equal(t, []*Book{hobbit}, lib.BorrowedBooks(john.ID))
}

// Run with -race: circulation and the locked readers must not conflict.
func TestConcurrentCirculationAndReads(t *testing.T) {
	lib, john, _ := newLibrary(t)
	hobbit, ok := lib.FindBook("75230")
	require.True(t, ok)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			lib.BorrowBook(john.ID, "75230")
			lib.ReturnBook(john.ID, "75230")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			held := len(lib.BorrowedBooks(john.ID))
			assert.LessOrEqual(t, held, 1)
			_ = lib.Available(hobbit)
			_, _ = lib.Borrower("75230")
		}
	}()
	wg.Wait()

	assert.True(t, lib.Available(hobbit))
	assert.Empty(t, lib.BorrowedBooks(john.ID))
}
