// Command seo-ingest bulk-loads keyword exports into the seo_keywords table.
//
// Keyword research tools export millions of rows; most are duplicates of what
// is already stored. A bloom filter over the existing slugs plus an in-run
// filter keeps the database round-trips down to the genuinely new keywords.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
	"github.com/MMMDolphin/ImunofanWebsite/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	maxKeywordLen = 200
)

// candidate is a parsed keyword row waiting for insertion.
type candidate struct {
	keyword string
	intent  string
	slug    string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing keyword CSV files (.csv or .csv.gz)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("keyword ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("keyword ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := listKeywordFiles(dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no .csv or .csv.gz files found in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewSeoRepository(pool)

	// Seed the filter with every slug already stored so re-runs skip them
	// without touching the database.
	filter, stored, err := buildSlugFilter(ctx, repo)
	if err != nil {
		return errors.Wrap(err, "build slug filter")
	}

	slog.Info("existing keywords loaded", slog.Int("count", stored))

	candidates, err := collectCandidates(ctx, files, filter)
	if err != nil {
		return errors.Wrap(err, "collect candidates")
	}

	slog.Info("new keywords found", slog.Int("count", len(candidates)))

	if len(candidates) == 0 {
		return nil
	}

	return writeKeywords(ctx, repo, candidates)
}

func listKeywordFiles(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dataDir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz") {
			files = append(files, filepath.Join(dataDir, name))
		}
	}
	return files, nil
}

func buildSlugFilter(ctx context.Context, repo *postgres.SeoRepository) (*bloom.BloomFilter, int, error) {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	existing, err := repo.ListKeywords(ctx)
	if err != nil {
		return nil, 0, err
	}
	for _, k := range existing {
		filter.AddString(k.Slug)
	}
	return filter, len(existing), nil
}

// collectCandidates parses all files concurrently. The bloom filter is shared
// under a mutex: a hit means the slug is (probably) stored or already seen in
// this run, so the row is dropped. False positives only cost a missed insert
// at a 0.1% rate, which bulk keyword loading tolerates.
func collectCandidates(ctx context.Context, files []string, filter *bloom.BloomFilter) ([]candidate, error) {
	var (
		mu         sync.Mutex
		candidates []candidate
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(collectFromFile(ctx, i, f, filter, &mu, &candidates))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func collectFromFile(
	ctx context.Context,
	idx int,
	path string,
	filter *bloom.BloomFilter,
	mu *sync.Mutex,
	candidates *[]candidate,
) func() error {
	return func() error {
		var rows, kept uint64

		err := streamCSVFile(ctx, path, func(record []string) {
			rows++
			if rows%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", rows),
				)
			}

			c, ok := parseRecord(record)
			if !ok {
				return
			}

			mu.Lock()
			if filter.TestString(c.slug) {
				mu.Unlock()
				return
			}
			filter.AddString(c.slug)
			*candidates = append(*candidates, c)
			mu.Unlock()
			kept++
		})
		if err != nil {
			return errors.Wrapf(err, "scan file %s", path)
		}

		slog.Info("file complete",
			slog.Int("file", idx+1),
			slog.Uint64("rows", rows),
			slog.Uint64("new", kept),
		)
		return nil
	}
}

// parseRecord turns a CSV row into a candidate. The expected layout is
// "keyword" or "keyword,intent"; header rows and blanks are skipped.
func parseRecord(record []string) (candidate, bool) {
	if len(record) == 0 {
		return candidate{}, false
	}

	keyword := strings.TrimSpace(record[0])
	if keyword == "" || len(keyword) > maxKeywordLen {
		return candidate{}, false
	}
	if strings.EqualFold(keyword, "keyword") {
		return candidate{}, false
	}

	intent := "informational"
	if len(record) > 1 {
		if v := strings.TrimSpace(record[1]); v != "" {
			intent = v
		}
	}

	slug := seo.Slugify(keyword)
	if slug == "" {
		return candidate{}, false
	}

	return candidate{keyword: keyword, intent: intent, slug: slug}, true
}

// streamCSVFile opens a CSV file, transparently decompressing .gz, and calls
// fn for each record.
func streamCSVFile(ctx context.Context, path string, fn func(record []string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(src)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		src = gz
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read record")
		}
		fn(record)
	}
}

// writeKeywords inserts all candidates. Duplicate slugs can still slip
// through when another process inserted concurrently; those rows are skipped.
func writeKeywords(ctx context.Context, repo *postgres.SeoRepository, candidates []candidate) error {
	slog.Info("writing keywords to database", slog.Int("count", len(candidates)))

	var inserted, skipped int
	for _, c := range candidates {
		k := seo.Keyword{Keyword: c.keyword, Slug: c.slug, Intent: c.intent}
		err := repo.CreateKeyword(ctx, &k)
		switch {
		case errors.Is(err, seo.ErrDuplicateKeyword):
			skipped++
		case err != nil:
			return errors.Wrapf(err, "create keyword %q", c.keyword)
		default:
			inserted++
		}
	}

	slog.Info("keywords written",
		slog.Int("inserted", inserted),
		slog.Int("skipped", skipped),
	)
	return nil
}
