// Command seed-db loads demo members and catalog items for local
// development and integration testing.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/repository"
)

const seedActor = "seed-db"

type memberSeed struct {
	email string
	name  string
}

var memberSeeds = []memberSeed{
	{email: "alice@example.com", name: "Alice"},
	{email: "bob@example.com", name: "Bob"},
	{email: "admin@example.com", name: "Admin"},
}

type itemSeed struct {
	form     item.Form
	imageURL string
}

var itemSeeds = []itemSeed{
	{
		form: item.Form{
			Name:   "Wireless Keyboard",
			Price:  45_000,
			Stock:  120,
			Detail: "Low-profile wireless keyboard with two-year battery life.",
			Status: item.StatusOnSale,
		},
		imageURL: "/images/wireless-keyboard.jpg",
	},
	{
		form: item.Form{
			Name:   "USB-C Dock",
			Price:  89_000,
			Stock:  40,
			Detail: "Dual-display dock with 100W pass-through charging.",
			Status: item.StatusOnSale,
		},
		imageURL: "/images/usb-c-dock.jpg",
	},
	{
		form: item.Form{
			Name:   "Mechanical Switch Tester",
			Price:  12_000,
			Stock:  0,
			Detail: "Nine-switch sampler board.",
			Status: item.StatusSoldOut,
		},
		imageURL: "/images/switch-tester.jpg",
	},
}

func main() {
	var databaseURL string

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

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedMembers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed members")
	}

	if err := seedItems(ctx, pool); err != nil {
		return errors.Wrap(err, "seed items")
	}

	return nil
}

func seedMembers(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding members", slog.Int("count", len(memberSeeds)))

	const upsertMemberSQL = `INSERT INTO members (email, name, created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $3, $4, $4)
		ON CONFLICT (email) DO NOTHING`

	now := time.Now()
	for _, m := range memberSeeds {
		if _, err := pool.Exec(ctx, upsertMemberSQL, m.email, m.name, now, seedActor); err != nil {
			return errors.Wrapf(err, "upsert member %s", m.email)
		}
		slog.Info("upserted member", slog.String("email", m.email))
	}
	return nil
}

// seedItems registers the demo catalog once; a non-empty items table means a
// previous run already seeded it.
func seedItems(ctx context.Context, pool *pgxpool.Pool) error {
	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return errors.Wrap(err, "count items")
	}
	if count > 0 {
		slog.Info("items already seeded, skipping", slog.Int64("count", count))
		return nil
	}

	slog.Info("seeding items", slog.Int("count", len(itemSeeds)))

	svc := item.NewService(repository.ItemStore{Store: repository.NewStore(pool)}, nil)
	for _, s := range itemSeeds {
		id, err := svc.SaveItem(ctx, seedActor, s.form, []item.ImageUpload{{
			URL:          s.imageURL,
			OriginalName: s.form.Name + ".jpg",
		}})
		if err != nil {
			return errors.Wrapf(err, "save item %s", s.form.Name)
		}
		slog.Info("saved item", slog.Int64("id", id), slog.String("name", s.form.Name))
	}
	return nil
}
