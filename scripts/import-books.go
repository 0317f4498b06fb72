package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lectio/lectio/internal/cache"
	"github.com/lectio/lectio/internal/repository"
	"github.com/lectio/lectio/internal/service"
	"github.com/lectio/lectio/migrations"
)

type bookRecord struct {
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Publisher string   `json:"publisher"`
	Pages     int      `json:"pages"`
	ISBN      string   `json:"isbn"`
	Genres    []string `json:"genres"`
	Synopsis  string   `json:"synopsis"`
}

type output struct {
	Imported []int64  `json:"imported"`
	Rejected []string `json:"rejected,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		redisURL    = flag.String("redis-url", os.Getenv("REDIS_URL"), "Redis connection string for the API book cache (optional)")
		cacheTTL    = flag.Duration("cache-ttl", cache.DefaultBookTTL, "TTL for cached imported books")
		file        = flag.String("file", "-", "JSON array or JSON-lines file of books (- for stdin)")
		migrate     = flag.Bool("migrate", false, "Apply pending migrations before importing")
		format      = flag.String("format", "plain", "Output format: plain or json")
		timeout     = flag.Duration("timeout", time.Minute, "Overall import timeout")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	records, err := readRecords(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read books:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if _, err := repo.Migrate(ctx, migrations.FS); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Without the API's cache a recent miss for an imported id keeps
	// answering "not found" until its negative entry expires.
	var bookCache service.BookCache
	if *redisURL != "" {
		c, err := cache.New(ctx, *redisURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "connect redis:", err)
			os.Exit(1)
		}
		defer c.Close()
		bookCache = c
	} else {
		logger.Warn("no redis url; imported books may stay hidden until negative cache entries expire",
			"negative_ttl", cache.NegativeCacheTTL)
	}
	books := service.NewBookService(repo, bookCache, *cacheTTL, logger, nil)

	var out output
	for i, rec := range records {
		book, err := books.CreateBook(ctx, service.CreateBookInput{
			Title:     rec.Title,
			Author:    rec.Author,
			Publisher: rec.Publisher,
			Pages:     rec.Pages,
			ISBN:      rec.ISBN,
			Genres:    rec.Genres,
			Synopsis:  rec.Synopsis,
		})
		if err != nil {
			if !errors.Is(err, service.ErrInvalidInput) {
				fmt.Fprintln(os.Stderr, "create book:", err)
				os.Exit(1)
			}
			out.Rejected = append(out.Rejected, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		out.Imported = append(out.Imported, book.ID)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("imported %d books, rejected %d\n", len(out.Imported), len(out.Rejected))
		for _, r := range out.Rejected {
			fmt.Println(r)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// readRecords accepts either a JSON array or one JSON object per line.
func readRecords(path string) ([]bookRecord, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var records []bookRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return records, nil
	}

	var records []bookRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; scanner.Scan(); line++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec bookRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
