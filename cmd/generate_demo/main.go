// Command generate_demo creates a demo database with a few public domain classics.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

type demoBook struct {
	Title string
	Year  int
}

var demoLibrary = []struct {
	Author string
	Books  []demoBook
}{
	{"Jane Austen", []demoBook{{"Pride and Prejudice", 1813}, {"Emma", 1815}}},
	{"Herman Melville", []demoBook{{"Moby-Dick", 1851}}},
	{"Fyodor Dostoevsky", []demoBook{{"Crime and Punishment", 1866}, {"The Brothers Karamazov", 1880}}},
	{"Mary Shelley", []demoBook{{"Frankenstein", 1818}}},
	{"Marcus Aurelius", []demoBook{{"Meditations", 180}}},
	{"Leo Tolstoy", []demoBook{{"War and Peace", 1869}}},
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(config.Database{
		Driver:       config.DriverSQLite,
		Path:         *dbPath,
		MaxOpenConns: 1,
		CreateSchema: true,
		LogLevel:     "warn",
	})
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	svc := catalog.NewService(books.NewRepository(db.DB), nil)
	ctx := context.Background()

	count := 0
	for _, entry := range demoLibrary {
		author, err := svc.AddAuthor(ctx, entry.Author)
		if err != nil {
			log.Printf("Failed to add author %s: %v", entry.Author, err)
			continue
		}
		for _, b := range entry.Books {
			book, err := svc.AddBook(ctx, entities.BookInput{
				Title:         b.Title,
				AuthorID:      author.ID,
				YearPublished: b.Year,
			})
			if err != nil {
				log.Printf("Failed to add book %s: %v", b.Title, err)
				continue
			}
			log.Printf("Saved: %s by %s (%d)", book.Title, book.AuthorName, book.YearPublished)
			count++
		}
	}

	log.Printf("Demo database generated successfully with %d books!", count)
}
