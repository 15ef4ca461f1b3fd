package command

// books.go holds the client-side book commands. They call a running API
// (see --api) instead of touching the database.

import (
	"fmt"
	"strconv"

	"elibrary/cmd/elibrary/command/client"
	"elibrary/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// booksCmd represents the books command for catalog related subcommands
var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse and manage the catalog through the API",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := newAPIClient().ListBooks(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(books) == 0 {
			fmt.Fprintln(out, "No books in the catalog.")
			return nil
		}
		for _, b := range books {
			fmt.Fprintf(out, "%-6d %-30s %-20s %-10s\n", b.ID, b.Title, b.ISBN, b.Status)
		}
		return nil
	},
}

var booksGetCmd = &cobra.Command{
	Use:   "get <book_id>",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		b, err := newAPIClient().GetBook(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:          %d\n", b.ID)
		fmt.Fprintf(out, "Title:       %s\n", b.Title)
		fmt.Fprintf(out, "Authors:     %s\n", b.Authors)
		fmt.Fprintf(out, "Publishers:  %s\n", b.Publishers)
		fmt.Fprintf(out, "Date:        %s\n", b.Date)
		fmt.Fprintf(out, "ISBN:        %s\n", b.ISBN)
		fmt.Fprintf(out, "Status:      %s\n", b.Status)
		if b.IsBorrowed() {
			fmt.Fprintf(out, "Borrowed by: %d\n", b.BorrowedBy)
		}
		return nil
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newAPIClient().AddBook(cmd.Context(), bookRequestFromFlags(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Book added with id %d\n", b.ID)
		return nil
	},
}

var booksUpdateCmd = &cobra.Command{
	Use:   "update <book_id>",
	Short: "Replace the five editable fields of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		return printMessage(cmd)(newAPIClient().UpdateBook(cmd.Context(), id, bookRequestFromFlags(cmd)))
	},
}

// idCommand builds the commands that only take a book id.
func idCommand(use, short string, call func(c *client.HTTPClient, cmd *cobra.Command, id int64) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <book_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			return printMessage(cmd)(call(newAPIClient(), cmd, id))
		},
	}
}

var (
	booksDeleteCmd = idCommand("delete", "Delete a book", func(c *client.HTTPClient, cmd *cobra.Command, id int64) (string, error) {
		return c.DeleteBook(cmd.Context(), id)
	})
	booksBorrowCmd = idCommand("borrow", "Borrow a book as the --token identity", func(c *client.HTTPClient, cmd *cobra.Command, id int64) (string, error) {
		return c.BorrowBook(cmd.Context(), id)
	})
	booksReturnCmd = idCommand("return", "Return a borrowed book", func(c *client.HTTPClient, cmd *cobra.Command, id int64) (string, error) {
		return c.ReturnBook(cmd.Context(), id)
	})
)

func init() {
	booksCmd.AddCommand(booksListCmd, booksGetCmd, booksAddCmd, booksUpdateCmd,
		booksDeleteCmd, booksBorrowCmd, booksReturnCmd)

	for _, c := range []*cobra.Command{booksAddCmd, booksUpdateCmd} {
		c.Flags().String("title", "", "Book title")
		c.Flags().String("authors", "", "Authors")
		c.Flags().String("publishers", "", "Publishers")
		c.Flags().String("date", "", "Publication date")
		c.Flags().String("isbn", "", "ISBN")
		for _, name := range []string{"title", "authors", "publishers", "date", "isbn"} {
			c.MarkFlagRequired(name)
		}
	}
}

func bookRequestFromFlags(cmd *cobra.Command) dto.BookRequest {
	var req dto.BookRequest
	req.Title, _ = cmd.Flags().GetString("title")
	req.Authors, _ = cmd.Flags().GetString("authors")
	req.Publishers, _ = cmd.Flags().GetString("publishers")
	req.Date, _ = cmd.Flags().GetString("date")
	req.ISBN, _ = cmd.Flags().GetString("isbn")
	return req
}

func parseBookID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid book id %q", arg)
	}
	return id, nil
}

func printMessage(cmd *cobra.Command) func(string, error) error {
	return func(msg string, err error) error {
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", msg)
		return nil
	}
}
