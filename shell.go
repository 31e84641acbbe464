package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"library-catalog/library"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
)

var errAmbiguousUser = errors.New("more than one user matches")

// Shell is the interactive command loop over a single in-memory catalog.
type Shell struct {
	lib    *library.Library
	sc     *bufio.Scanner
	out    io.Writer
	logger *log.Logger

	prompt      string
	interactive bool // print prompts and the banner
	heading     lipgloss.Style
}

func NewShell(lib *library.Library, in io.Reader, out io.Writer, logger *log.Logger) *Shell {
	return &Shell{
		lib:     lib,
		sc:      bufio.NewScanner(in),
		out:     out,
		logger:  logger,
		prompt:  "> ",
		heading: lipgloss.NewRenderer(out).NewStyle().Bold(true),
	}
}

// Run reads commands until "exit" or end of input.
func (s *Shell) Run() error {
	if s.interactive {
		s.banner()
	}

	for {
		s.ask("\n" + s.prompt)
		if !s.sc.Scan() {
			break
		}
		cmd := strings.TrimSpace(s.sc.Text())

		switch cmd {
		case "add book":
			s.handleAddBook()
		case "add user":
			s.handleAddUser()
		case "list books":
			s.handleListBooks()
		case "list users":
			s.handleListUsers()
		case "search book":
			s.handleSearchBooks()
		case "search user":
			s.handleSearchUsers()
		case "remove book":
			s.handleRemoveBook()
		case "remove user":
			s.handleRemoveUser()
		case "borrow":
			s.handleBorrow()
		case "return":
			s.handleReturn()
		case "available":
			s.handleAvailable()
		case "help":
			s.banner()
		case "":
			continue
		case "exit":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Unknown command. Type 'help' to list the available commands.")
		}
	}
	return s.sc.Err()
}

func (s *Shell) banner() {
	fmt.Fprintln(s.out, s.heading.Render("Library Catalog"))
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Books: add book, list books, search book, remove book, available")
	fmt.Fprintln(s.out, "  Users: add user, list users, search user, remove user")
	fmt.Fprintln(s.out, "  Circulation: borrow, return")
	fmt.Fprintln(s.out, "  System: help, exit")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Tips:")
	fmt.Fprintln(s.out, "  • Wherever a User ID is asked for, a unique name fragment works too")
}

// ask prints a prompt when a person is typing.
func (s *Shell) ask(prompt string) {
	if s.interactive {
		fmt.Fprint(s.out, prompt)
	}
}

// field prompts for and reads one trimmed line. ok is false at end of input.
func (s *Shell) field(label string) (string, bool) {
	s.ask(label + ": ")
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

// ------------------ Books ------------------

func (s *Shell) handleAddBook() {
	title, ok := s.field("Title")
	if !ok {
		return
	}
	author, ok := s.field("Author")
	if !ok {
		return
	}
	isbn, ok := s.field("ISBN")
	if !ok {
		return
	}

	s.lib.AddBook(library.NewBook(title, author, isbn))
	fmt.Fprintf(s.out, "Added book '%s' (ISBN %s)\n", title, isbn)
}

func (s *Shell) handleListBooks() {
	books := s.lib.Books()
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No books in library.")
		return
	}
	s.printBooks(books)
}

func (s *Shell) handleSearchBooks() {
	query, ok := s.field("Query")
	if !ok {
		return
	}

	books := s.lib.SearchBook(query)
	if len(books) == 0 {
		fmt.Fprintf(s.out, "No books found matching '%s'.\n", query)
		return
	}
	fmt.Fprintf(s.out, "Found %d book(s) matching '%s':\n", len(books), query)
	s.printBooks(books)
}

func (s *Shell) handleRemoveBook() {
	isbn, ok := s.field("ISBN")
	if !ok {
		return
	}
	if _, found := s.lib.FindBook(isbn); !found {
		fmt.Fprintf(s.out, "No book with ISBN %s.\n", isbn)
		return
	}
	if u, lent := s.lib.Borrower(isbn); lent {
		s.logger.Warn("removing a lent book", "isbn", isbn, "borrower", u.ID)
	}
	s.lib.RemoveBook(isbn)
	fmt.Fprintf(s.out, "Removed book(s) with ISBN %s\n", isbn)
}

func (s *Shell) handleAvailable() {
	isbn, ok := s.field("ISBN")
	if !ok {
		return
	}
	if s.lib.IsBookAvailable(isbn) {
		fmt.Fprintf(s.out, "Book %s is available\n", isbn)
	} else {
		fmt.Fprintf(s.out, "Book %s is not available\n", isbn)
	}
}

func (s *Shell) printBooks(books []*library.Book) {
	fmt.Fprintln(s.out, s.heading.Render(fmt.Sprintf("%s %s %s %s %s",
		pad("ISBN", 14), pad("Title", 30), pad("Author", 25), pad("Available", 10), "Borrower")))
	fmt.Fprintln(s.out, strings.Repeat("-", 100))

	for _, b := range books {
		available := s.lib.Available(b)
		borrower, availStr := "None", "Yes"
		if !available {
			borrower, availStr = "Unknown", "No"
			if u, ok := s.lib.Borrower(b.ISBN); ok {
				borrower = u.Name
			}
		}
		fmt.Fprintf(s.out, "%s %s %s %s %s\n",
			pad(b.ISBN, 14), pad(b.Title, 30), pad(b.Author, 25), pad(availStr, 10), borrower)
	}
}

// ------------------ Users ------------------

func (s *Shell) handleAddUser() {
	name, ok := s.field("Name")
	if !ok {
		return
	}
	u := library.NewUser(name)
	s.lib.AddUser(u)
	fmt.Fprintf(s.out, "Added user '%s' with ID %s\n", name, u.ID)
}

func (s *Shell) handleListUsers() {
	users := s.lib.Users()
	if len(users) == 0 {
		fmt.Fprintln(s.out, "No users registered.")
		return
	}
	s.printUsers(users)
}

func (s *Shell) handleSearchUsers() {
	query, ok := s.field("Query")
	if !ok {
		return
	}

	users := s.lib.SearchUser(query)
	if len(users) == 0 {
		fmt.Fprintf(s.out, "No users found matching '%s'.\n", query)
		return
	}
	fmt.Fprintf(s.out, "Found %d user(s) matching '%s':\n", len(users), query)
	s.printUsers(users)
}

func (s *Shell) handleRemoveUser() {
	u, ok := s.user()
	if !ok {
		return
	}
	if held := s.lib.BorrowedBooks(u.ID); len(held) > 0 {
		fmt.Fprintf(s.out, "Warning: %s still holds %d book(s); they stay checked out.\n", u.Name, len(held))
	}
	s.lib.RemoveUser(u.ID)
	fmt.Fprintf(s.out, "Removed user '%s'\n", u.Name)
}

func (s *Shell) printUsers(users []*library.User) {
	fmt.Fprintln(s.out, s.heading.Render(fmt.Sprintf("%s %s %s", pad("ID", 36), pad("Name", 30), "Borrowed")))
	fmt.Fprintln(s.out, strings.Repeat("-", 80))

	for _, u := range users {
		var held []string
		for _, b := range s.lib.BorrowedBooks(u.ID) {
			held = append(held, b.Title)
		}
		borrowed := "None"
		if len(held) > 0 {
			borrowed = strings.Join(held, ", ")
		}
		fmt.Fprintf(s.out, "%s %s %s\n", pad(u.ID, 36), pad(u.Name, 30), borrowed)
	}
}

// user reads a User ID, falling back to a unique name match.
func (s *Shell) user() (*library.User, bool) {
	ref, ok := s.field("User ID")
	if !ok {
		return nil, false
	}
	u, err := s.resolveUser(ref)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return nil, false
	}
	return u, true
}

func (s *Shell) resolveUser(ref string) (*library.User, error) {
	if u, ok := s.lib.FindUser(ref); ok {
		return u, nil
	}
	if ref == "" {
		return nil, fmt.Errorf("%q: %w", ref, library.ErrUserNotFound)
	}
	switch matches := s.lib.SearchUser(ref); len(matches) {
	case 0:
		return nil, fmt.Errorf("%q: %w", ref, library.ErrUserNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q: %w (%d), use the ID", ref, errAmbiguousUser, len(matches))
	}
}

// ------------------ Circulation ------------------

func (s *Shell) handleBorrow() {
	u, ok := s.user()
	if !ok {
		return
	}
	isbn, ok := s.field("ISBN")
	if !ok {
		return
	}

	if err := s.lib.CheckoutBook(u.ID, isbn); err != nil {
		fmt.Fprintf(s.out, "Error checking out book: %v\n", reason(err))
		return
	}
	b, _ := s.lib.FindBook(isbn)
	fmt.Fprintf(s.out, "Book '%s' checked out to %s\n", b.Title, u.Name)
}

func (s *Shell) handleReturn() {
	u, ok := s.user()
	if !ok {
		return
	}
	isbn, ok := s.field("ISBN")
	if !ok {
		return
	}

	if err := s.lib.CheckinBook(u.ID, isbn); err != nil {
		fmt.Fprintf(s.out, "Error returning book: %v\n", reason(err))
		return
	}
	b, _ := s.lib.FindBook(isbn)
	fmt.Fprintf(s.out, "Book '%s' returned by %s\n", b.Title, u.Name)
	fmt.Fprintln(s.out, "Book is now available for checkout")
}

// reason strips the lookup context from circulation errors for display.
func reason(err error) error {
	for _, sentinel := range []error{
		library.ErrUserNotFound,
		library.ErrBookNotFound,
		library.ErrBookUnavailable,
		library.ErrBookNotBorrowed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}

// pad truncates s to width display cells and right-fills it with spaces.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}
