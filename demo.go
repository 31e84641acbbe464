package main

import (
	"fmt"
	"io"

	"library-catalog/library"

	"github.com/charmbracelet/log"
)

// runDemo walks through the sample catalog: two books, two users, a search
// by title fragment and by ISBN, and one borrow/return round trip.
func runDemo(out io.Writer, logger *log.Logger) {
	lib := library.New(library.WithLogger(logger))

	lib.AddBook(library.NewBook("The Hobbit", "J.R.R. Tolkien", "75230"))
	lib.AddBook(library.NewBook("Harry Potter", "J.K. Rowling", "8970979"))

	john := library.NewUser("John Doe")
	lib.AddUser(john)
	lib.AddUser(library.NewUser("Scott Smith"))

	for _, q := range []string{"Pott", "75230"} {
		fmt.Fprintf(out, "searchBook(%q):\n", q)
		for _, b := range lib.SearchBook(q) {
			fmt.Fprintf(out, "  %s by %s (ISBN %s)\n", b.Title, b.Author, b.ISBN)
		}
	}

	fmt.Fprintln(out, "users:")
	for _, u := range lib.Users() {
		fmt.Fprintf(out, "  %s %s\n", u.ID, u.Name)
	}

	fmt.Fprintf(out, "borrowBook(John Doe, 75230) = %t\n", lib.BorrowBook(john.ID, "75230"))
	fmt.Fprintf(out, "isBookAvailable(75230) = %t\n", lib.IsBookAvailable("75230"))
	fmt.Fprintf(out, "returnBook(John Doe, 75230) = %t\n", lib.ReturnBook(john.ID, "75230"))
	fmt.Fprintf(out, "isBookAvailable(75230) = %t\n", lib.IsBookAvailable("75230"))
}
