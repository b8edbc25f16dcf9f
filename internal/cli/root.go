// Package cli defines the librarian command tree.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	auditrepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/entrypoint"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	var configFile string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig(configFile)
		if err != nil {
			return err
		}
		entrypoint.Run(cfg, version)
		return nil
	}

	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Manage the books and authors of a library database",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $"+config.ConfigFileEnv+")")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	root.AddCommand(newAuthorsCommand(&configFile), newBooksCommand(&configFile))

	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAuthorsCommand(configFile *string) *cobra.Command {
	authors := &cobra.Command{
		Use:   "authors",
		Short: "List or add authors",
	}

	authors.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List authors ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(*configFile, func(svc *catalog.Service) error {
				list, err := svc.ListAuthors(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, a := range list {
					rows = append(rows, []string{strconv.FormatUint(uint64(a.ID), 10), a.Name})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "NAME"}, rows)
			})
		},
	})

	authors.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(*configFile, func(svc *catalog.Service) error {
				author, err := svc.AddAuthor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added author %d: %s\n", author.ID, author.Name)
				return nil
			})
		},
	})

	return authors
}

func newBooksCommand(configFile *string) *cobra.Command {
	bookCmd := &cobra.Command{
		Use:   "books",
		Short: "List or add books",
	}

	bookCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List books with their authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(*configFile, func(svc *catalog.Service) error {
				list, err := svc.ListBooks(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, b := range list {
					rows = append(rows, []string{
						strconv.FormatUint(uint64(b.ID), 10),
						b.Title,
						b.AuthorName,
						strconv.Itoa(b.YearPublished),
					})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "AUTHOR", "YEAR"}, rows)
			})
		},
	})

	var input struct {
		title    string
		authorID uint
		year     int
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(*configFile, func(svc *catalog.Service) error {
				book, err := svc.AddBook(cmd.Context(), entities.BookInput{
					Title:         input.title,
					AuthorID:      input.authorID,
					YearPublished: input.year,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added book %d: %s by %s (%d)\n", book.ID, book.Title, book.AuthorName, book.YearPublished)
				return nil
			})
		},
	}
	add.Flags().StringVar(&input.title, "title", "", "book title (required)")
	add.Flags().UintVar(&input.authorID, "author-id", 0, "ID of an existing author (required)")
	add.Flags().IntVar(&input.year, "year", 0, "year published (required)")
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("author-id")
	_ = add.MarkFlagRequired("year")
	bookCmd.AddCommand(add)

	return bookCmd
}

// withCatalog opens the configured database for the duration of fn.
func withCatalog(configFile string, fn func(svc *catalog.Service) error) error {
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	return fn(catalog.NewService(books.NewRepository(db.DB), auditService))
}

// printTable aligns columns for a terminal and writes tab-separated rows
// without a header otherwise, so the output can be piped.
func printTable(out io.Writer, header []string, rows [][]string) error {
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		for _, row := range rows {
			if _, err := fmt.Fprintln(out, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
