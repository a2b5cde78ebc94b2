//go:build integration

package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/paging"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "shop",
				"POSTGRES_PASSWORD": "shop",
				"POSTGRES_DB":       "shop",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	url := fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port())

	testPool, err = NewPool(ctx, url)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	return m.Run()
}

// --- Helpers ---

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE order_lines, orders, cart_items, carts, item_images, items, members RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func insertMember(t *testing.T, email, name string) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO members (email, name, created_at, updated_at) VALUES ($1, $2, now(), now())`,
		email, name)
	require.NoError(t, err)
}

func saveItem(t *testing.T, actor string, form item.Form, images ...item.ImageUpload) int64 {
	t.Helper()
	svc := item.NewService(ItemStore{Store: NewStore(testPool)}, NewItemReader(testPool))
	id, err := svc.SaveItem(context.Background(), actor, form, images)
	require.NoError(t, err)
	return id
}

func onSaleForm(name string, price, stock int64) item.Form {
	return item.Form{Name: name, Price: price, Stock: stock, Detail: "detail", Status: item.StatusOnSale}
}

func itemStock(t *testing.T, id int64) int64 {
	t.Helper()
	var stock int64
	err := testPool.QueryRow(context.Background(),
		`SELECT stock_number FROM items WHERE item_id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func mustRequest(t *testing.T, page, size int) paging.Request {
	t.Helper()
	req, err := paging.NewRequest(page, size)
	require.NoError(t, err)
	return req
}

// --- Item management ---

func TestItemRoundTrip(t *testing.T) {
	resetTables(t)

	id := saveItem(t, "admin@example.com", onSaleForm("Wireless Keyboard", 45000, 10),
		item.ImageUpload{URL: "/images/kb.jpg", OriginalName: "kb.jpg"},
		item.ImageUpload{URL: "/images/kb-side.jpg", OriginalName: "kb-side.jpg"},
	)

	svc := item.NewService(ItemStore{Store: NewStore(testPool)}, NewItemReader(testPool))
	detail, err := svc.ItemDetail(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Wireless Keyboard", detail.Item.Name)
	assert.Equal(t, "admin@example.com", detail.Item.Audit.CreatedBy)
	require.Len(t, detail.Images, 2)
	assert.True(t, detail.Images[0].Representative, "first uploaded image is representative")
	assert.False(t, detail.Images[1].Representative)
}

func TestItemUpdate_StampsModifier(t *testing.T) {
	resetTables(t)

	id := saveItem(t, "admin@example.com", onSaleForm("Dock", 89000, 5))

	svc := item.NewService(ItemStore{Store: NewStore(testPool)}, NewItemReader(testPool))
	_, err := svc.UpdateItem(context.Background(), "editor@example.com", id,
		item.Form{Name: "USB-C Dock", Price: 79000, Stock: 5, Detail: "detail", Status: item.StatusOnSale}, nil)
	require.NoError(t, err)

	detail, err := svc.ItemDetail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "USB-C Dock", detail.Item.Name)
	assert.Equal(t, "admin@example.com", detail.Item.Audit.CreatedBy)
	assert.Equal(t, "editor@example.com", detail.Item.Audit.ModifiedBy)
}

// --- Catalog paging ---

func TestCatalogPaging_NewestFirst(t *testing.T) {
	resetTables(t)

	var ids []int64
	for i := range 5 {
		ids = append(ids, saveItem(t, "admin@example.com",
			onSaleForm(fmt.Sprintf("Item %d", i), 1000, 10)))
	}

	svc := catalog.NewService(NewCatalogRepository(testPool))

	page, err := svc.AdminItemPage(context.Background(), catalog.Filter{}, mustRequest(t, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Content, 2)
	assert.Equal(t, ids[4], page.Content[0].ID, "newest item comes first")
	assert.Equal(t, ids[3], page.Content[1].ID)

	page, err = svc.AdminItemPage(context.Background(), catalog.Filter{}, mustRequest(t, 2, 2))
	require.NoError(t, err)
	require.Len(t, page.Content, 1, "last page holds the remainder")
	assert.Equal(t, ids[0], page.Content[0].ID)
}

func TestCatalogPaging_Filters(t *testing.T) {
	resetTables(t)

	saveItem(t, "admin@example.com", onSaleForm("Blue Phone Case", 5000, 10))
	saveItem(t, "admin@example.com", item.Form{
		Name: "Red Phone Case", Price: 5000, Stock: 0, Detail: "detail", Status: item.StatusSoldOut,
	})
	saveItem(t, "other@example.com", onSaleForm("Desk Mat", 15000, 10))

	svc := catalog.NewService(NewCatalogRepository(testPool))

	page, err := svc.AdminItemPage(context.Background(), catalog.Filter{
		Status:   item.StatusOnSale,
		SearchBy: catalog.SearchByName,
		Query:    "Phone",
	}, mustRequest(t, 0, 10))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Blue Phone Case", page.Content[0].Name)

	page, err = svc.AdminItemPage(context.Background(), catalog.Filter{
		SearchBy: catalog.SearchByCreator,
		Query:    "other@",
	}, mustRequest(t, 0, 10))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Desk Mat", page.Content[0].Name)

	_, err = svc.AdminItemPage(context.Background(), catalog.Filter{DateRange: "2y"}, mustRequest(t, 0, 10))
	var filterErr *catalog.InvalidFilterError
	assert.True(t, errors.As(err, &filterErr))
}

func TestDisplayItemPage_RequiresRepresentativeImage(t *testing.T) {
	resetTables(t)

	withImage := saveItem(t, "admin@example.com", onSaleForm("Keyboard", 45000, 10),
		item.ImageUpload{URL: "/images/kb.jpg", OriginalName: "kb.jpg"})
	saveItem(t, "admin@example.com", onSaleForm("Imageless", 1000, 10))

	svc := catalog.NewService(NewCatalogRepository(testPool))
	page, err := svc.DisplayItemPage(context.Background(), catalog.Filter{}, mustRequest(t, 0, 10))
	require.NoError(t, err)

	require.Len(t, page.Content, 1, "items without a representative image are not displayed")
	assert.Equal(t, withImage, page.Content[0].ID)
	assert.Equal(t, "/images/kb.jpg", page.Content[0].ImageURL)
}

// --- Cart ---

func TestAddToCart_MergesIntoSingleRow(t *testing.T) {
	resetTables(t)
	insertMember(t, "alice@example.com", "Alice")
	itemID := saveItem(t, "admin@example.com", onSaleForm("Keyboard", 45000, 10))

	svc := cart.NewService(CartStore{Store: NewStore(testPool)})

	first, err := svc.AddToCart(context.Background(), "alice@example.com", itemID, 3)
	require.NoError(t, err)
	second, err := svc.AddToCart(context.Background(), "alice@example.com", itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var (
		rows     int64
		quantity int64
	)
	err = testPool.QueryRow(context.Background(),
		`SELECT COUNT(*), MAX(quantity) FROM cart_items`).Scan(&rows, &quantity)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows, "re-adding the same item must not duplicate the row")
	assert.Equal(t, int64(7), quantity)
}

// --- Orders ---

func TestOrderLifecycle(t *testing.T) {
	resetTables(t)
	insertMember(t, "alice@example.com", "Alice")
	insertMember(t, "bob@example.com", "Bob")
	itemID := saveItem(t, "admin@example.com", onSaleForm("Keyboard", 45000, 100))

	svc := order.NewService(OrderStore{Store: NewStore(testPool)}, NewOrderHistoryRepository(testPool))

	orderID, err := svc.PlaceOrder(context.Background(), "alice@example.com", itemID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(98), itemStock(t, itemID))

	// Another member cannot cancel it, and nothing changes.
	err = svc.CancelOrder(context.Background(), orderID, "bob@example.com")
	var authErr *order.NotAuthorizedError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, int64(98), itemStock(t, itemID))

	require.NoError(t, svc.CancelOrder(context.Background(), orderID, "alice@example.com"))
	assert.Equal(t, int64(100), itemStock(t, itemID), "cancellation restores the debit")

	err = svc.CancelOrder(context.Background(), orderID, "alice@example.com")
	var canceledErr *order.AlreadyCanceledError
	require.True(t, errors.As(err, &canceledErr))
	assert.Equal(t, int64(100), itemStock(t, itemID), "stock is never credited twice")

	history, err := svc.OrderHistory(context.Background(), "alice@example.com", mustRequest(t, 0, 10))
	require.NoError(t, err)
	require.Len(t, history.Content, 1)
	assert.Equal(t, order.StatusCanceled, history.Content[0].Status)
	assert.Equal(t, int64(90000), history.Content[0].TotalPrice())
}

func TestOrderHistory_NewestFirstWithImages(t *testing.T) {
	resetTables(t)
	insertMember(t, "alice@example.com", "Alice")
	itemID := saveItem(t, "admin@example.com", onSaleForm("Keyboard", 45000, 100),
		item.ImageUpload{URL: "/images/kb.jpg", OriginalName: "kb.jpg"})

	svc := order.NewService(OrderStore{Store: NewStore(testPool)}, NewOrderHistoryRepository(testPool))

	first, err := svc.PlaceOrder(context.Background(), "alice@example.com", itemID, 1)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), "alice@example.com", itemID, 2)
	require.NoError(t, err)

	history, err := svc.OrderHistory(context.Background(), "alice@example.com", mustRequest(t, 0, 10))
	require.NoError(t, err)

	require.Len(t, history.Content, 2)
	assert.Equal(t, second, history.Content[0].OrderID, "newest order first")
	assert.Equal(t, first, history.Content[1].OrderID)
	require.Len(t, history.Content[0].Lines, 1)
	assert.Equal(t, "Keyboard", history.Content[0].Lines[0].ItemName)
	assert.Equal(t, "/images/kb.jpg", history.Content[0].Lines[0].ImageURL)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	resetTables(t)
	insertMember(t, "alice@example.com", "Alice")
	itemID := saveItem(t, "admin@example.com", onSaleForm("Keyboard", 45000, 5))

	svc := order.NewService(OrderStore{Store: NewStore(testPool)}, NewOrderHistoryRepository(testPool))

	_, err := svc.PlaceOrder(context.Background(), "alice@example.com", itemID, 6)
	var stockErr *item.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(5), stockErr.Stock)

	assert.Equal(t, int64(5), itemStock(t, itemID))
	var orders int64
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM orders`).Scan(&orders))
	assert.Zero(t, orders, "no order row may survive a failed debit")
}

// Concurrent orders on the same item must serialize on the row lock so the
// stock never oversells.
func TestPlaceOrder_ConcurrentDebits(t *testing.T) {
	resetTables(t)
	insertMember(t, "alice@example.com", "Alice")
	itemID := saveItem(t, "admin@example.com", onSaleForm("Keyboard", 45000, 5))

	svc := order.NewService(OrderStore{Store: NewStore(testPool)}, NewOrderHistoryRepository(testPool))

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		shortages int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), "alice@example.com", itemID, 1)

			mu.Lock()
			defer mu.Unlock()
			var stockErr *item.InsufficientStockError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &stockErr):
				shortages++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded, "exactly the available stock may be sold")
	assert.Equal(t, attempts-5, shortages)
	assert.Zero(t, itemStock(t, itemID))
}
