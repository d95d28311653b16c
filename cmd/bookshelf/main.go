// Command bookshelf is a terminal client for the bookshelf API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/client"
)

const usage = `usage: bookshelf [-api URL] [-token-file PATH] <command> [args]

commands:
  signup -email E -username U -password P
  login  -email E -password P
  search <query>     search books other readers saved
  lookup <query>     search Google Books
  save   -id ID -title T [-authors A,B] [-description D] [-image URL] [-link URL]
  remove <book id>
  list               show your saved books
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("bookshelf", flag.ContinueOnError)
	global.SetOutput(stderr)
	apiURL := global.String("api", envOr("BOOKSHELF_API", "http://localhost:8080"), "API base URL")
	tokenFile := global.String("token-file", defaultTokenFile(), "where the login token is stored")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	c := client.New(*apiURL, nil)
	if token, err := os.ReadFile(*tokenFile); err == nil {
		c.SetToken(strings.TrimSpace(string(token)))
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	var err error
	switch cmd {
	case "signup":
		err = signup(ctx, c, rest, stdout, *tokenFile)
	case "login":
		err = login(ctx, c, rest, stdout, *tokenFile)
	case "search":
		err = search(ctx, c.Search, rest, stdout)
	case "lookup":
		err = search(ctx, c.Lookup, rest, stdout)
	case "save":
		err = save(ctx, client.NewShelf(c), rest, stdout)
	case "remove":
		err = remove(ctx, client.NewShelf(c), rest, stdout)
	case "list":
		err = list(ctx, client.NewShelf(c), stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, describe(err))
		return 1
	}
	return 0
}

// describe turns an error into a message for the user.
func describe(err error) string {
	var (
		transportErr *client.TransportError
		apiErr       *client.APIError
		flagErr      usageError
	)
	switch {
	case errors.Is(err, client.ErrBadCredentials):
		return "Bad credentials. Log in again with: bookshelf login"
	case errors.As(err, &transportErr):
		return "Could not reach the bookshelf server. Check your connection and try again."
	case errors.As(err, &flagErr):
		return string(flagErr)
	case errors.As(err, &apiErr):
		switch apiErr.Code {
		case "VALIDATION_ERROR", "BAD_REQUEST":
			return "The request was rejected: " + apiErr.Message
		case "ALREADY_EXISTS":
			return "That email or username is already taken."
		case "UPSTREAM_ERROR":
			return "Book search is unavailable right now. Try again later."
		}
	}
	return "Something went wrong. Please try again."
}

type usageError string

func (e usageError) Error() string { return string(e) }

func signup(ctx context.Context, c *client.Client, args []string, stdout io.Writer, tokenFile string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "")
	username := fs.String("username", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil || *email == "" || *username == "" || *password == "" {
		return usageError("signup needs -email, -username and -password")
	}

	s, err := c.Signup(ctx, *email, *username, *password)
	if err != nil {
		return err
	}
	if err := writeToken(tokenFile, s.Token); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Welcome, %s!\n", s.User.Username)
	return nil
}

func login(ctx context.Context, c *client.Client, args []string, stdout io.Writer, tokenFile string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil || *email == "" || *password == "" {
		return usageError("login needs -email and -password")
	}

	s, err := c.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := writeToken(tokenFile, s.Token); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Logged in as %s.\n", s.User.Username)
	return nil
}

func search(ctx context.Context, fn func(context.Context, string) ([]book.Book, error), args []string, stdout io.Writer) error {
	q := strings.TrimSpace(strings.Join(args, " "))
	if q == "" {
		return usageError("search needs a query")
	}
	books, err := fn(ctx, q)
	if err != nil {
		return err
	}
	printBooks(stdout, books, true)
	return nil
}

func save(ctx context.Context, shelf *client.Shelf, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var in book.Input
	fs.StringVar(&in.BookID, "id", "", "")
	fs.StringVar(&in.Title, "title", "", "")
	authors := fs.String("authors", "", "")
	fs.StringVar(&in.Description, "description", "", "")
	fs.StringVar(&in.Image, "image", "", "")
	fs.StringVar(&in.Link, "link", "", "")
	if err := fs.Parse(args); err != nil || in.BookID == "" || in.Title == "" {
		return usageError("save needs -id and -title")
	}
	if *authors != "" {
		in.Authors = strings.Split(*authors, ",")
	}

	books, err := shelf.Save(ctx, in.Normalize())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %q.\n", in.Title)
	printBooks(stdout, books, false)
	return nil
}

func remove(ctx context.Context, shelf *client.Shelf, args []string, stdout io.Writer) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError("remove needs exactly one book id")
	}
	books, err := shelf.Remove(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Removed.")
	printBooks(stdout, books, false)
	return nil
}

func list(ctx context.Context, shelf *client.Shelf, stdout io.Writer) error {
	books, err := shelf.Refresh(ctx)
	if err != nil {
		return err
	}
	printBooks(stdout, books, false)
	return nil
}

// printBooks writes one line per book. Ids are shown only where the user needs
// them to save a search result.
func printBooks(w io.Writer, books []book.Book, withIDs bool) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books.")
		return
	}
	for _, b := range books {
		line := b.Title
		if len(b.Authors) > 0 {
			line += " by " + strings.Join(b.Authors, ", ")
		}
		if withIDs {
			line += "  [" + b.BookID + "]"
		}
		fmt.Fprintln(w, line)
	}
}

func writeToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func defaultTokenFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "bookshelf", "token")
	}
	return ".bookshelf-token"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
