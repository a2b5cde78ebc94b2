// Command catalog-ingest bulk-loads item feeds into the catalog. Feeds are
// gzip-compressed JSON lines files produced by suppliers; the same item may
// appear in several feeds, so names are deduplicated across all files with a
// bloom filter before anything is written.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// feedRecord is one supplier feed line.
type feedRecord struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Stock    int64  `json:"stock"`
	Detail   string `json:"detail"`
	Status   string `json:"status"`
	ImageURL string `json:"imageUrl"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
		actor       string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing feed*.jsonl.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&actor, "actor", "catalog-ingest", "identity stamped on ingested rows")
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

	if err := run(ctx, dataDir, databaseURL, actor); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL, actor string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "feed*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no feed*.jsonl.gz files in %s", dataDir)
	}

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	records, err := parseFeeds(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	// Cross-feed dedupe by name. A bloom false positive drops a genuine new
	// item with probability bloomFPR, which is fine for a reloadable feed.
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	unique := records[:0]
	for _, rec := range records {
		if seen.TestString(rec.Name) {
			continue
		}
		seen.AddString(rec.Name)
		unique = append(unique, rec)
	}

	slog.Info("feeds parsed",
		slog.Int("records", len(records)),
		slog.Int("unique", len(unique)),
	)
	if len(unique) == 0 {
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeItems(ctx, repository.NewStore(pool), actor, unique)
}

// parseFeeds streams all feed files concurrently, one goroutine per file.
func parseFeeds(ctx context.Context, files []string) ([]feedRecord, error) {
	results := make([][]feedRecord, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeedFile(ctx, i, f, results))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []feedRecord
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func parseFeedFile(ctx context.Context, idx int, path string, results [][]feedRecord) func() error {
	return func() error {
		var (
			records []feedRecord
			count   uint64
		)

		if err := streamGzFile(ctx, path, func(line []byte) error {
			var rec feedRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return errors.Wrap(err, "parse feed line")
			}
			if rec.Name == "" {
				return nil
			}
			records = append(records, rec)

			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("records", count),
				)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "parse feed file %d", idx+1)
		}

		slog.Info("parse complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_records", count),
		)

		results[idx] = records
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writeItems registers each deduplicated record as an item with its image.
// Records that fail domain validation are skipped, not fatal.
func writeItems(ctx context.Context, store *repository.Store, actor string, records []feedRecord) error {
	slog.Info("writing items to database", slog.Int("count", len(records)))

	svc := item.NewService(repository.ItemStore{Store: store}, nil)

	var written, skipped int
	for _, rec := range records {
		form := item.Form{
			Name:   rec.Name,
			Price:  rec.Price,
			Stock:  rec.Stock,
			Detail: rec.Detail,
			Status: item.SellStatus(rec.Status),
		}
		var images []item.ImageUpload
		if rec.ImageURL != "" {
			images = append(images, item.ImageUpload{
				URL:          rec.ImageURL,
				OriginalName: filepath.Base(rec.ImageURL),
			})
		}

		if _, err := svc.SaveItem(ctx, actor, form, images); err != nil {
			slog.Warn("skipping invalid record",
				slog.String("name", rec.Name),
				slog.String("error", err.Error()),
			)
			skipped++
			continue
		}

		written++
		if written%1000 == 0 || written == len(records) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(records)))
		}
	}

	slog.Info("items written", slog.Int("written", written), slog.Int("skipped", skipped))
	return nil
}
