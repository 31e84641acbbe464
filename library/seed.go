package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Seed is a catalog snapshot read from TOML: [[books]] and [[users]] tables.
type Seed struct {
	Books []SeedBook `toml:"books"`
	Users []SeedUser `toml:"users"`
}

// SeedBook is one [[books]] entry.
type SeedBook struct {
	Title  string `toml:"title"`
	Author string `toml:"author"`
	ISBN   string `toml:"isbn"`
}

// SeedUser is one [[users]] entry; the id is assigned on import.
type SeedUser struct {
	Name string `toml:"name"`
}

// LoadSeed decodes a seed document from r.
func LoadSeed(r io.Reader) (*Seed, error) {
	var s Seed
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &s, nil
}

// LoadSeedFile reads the seed at path (relative paths resolve from cwd).
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// Import adds the seed's books and users in file order. Users get fresh ids.
func (l *Library) Import(s *Seed) (books, users int) {
	for _, sb := range s.Books {
		l.AddBook(NewBook(sb.Title, sb.Author, sb.ISBN))
		books++
	}
	for _, su := range s.Users {
		l.AddUser(NewUser(su.Name))
		users++
	}
	l.logger.Info("seed imported", "books", books, "users", users)
	return books, users
}
