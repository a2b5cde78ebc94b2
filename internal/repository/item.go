package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/paging"
)

const itemColumns = `item_id, item_name, price, stock_number, item_detail, sell_status,
		created_at, updated_at, created_by, modified_by`

const (
	getItemSQL = `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1`

	getItemForUpdateSQL = `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1 FOR UPDATE`

	insertItemSQL = `INSERT INTO items (item_name, price, stock_number, item_detail, sell_status,
			created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING item_id`

	updateItemSQL = `UPDATE items
		SET item_name = $2, price = $3, stock_number = $4, item_detail = $5, sell_status = $6,
			updated_at = $7, modified_by = $8
		WHERE item_id = $1`

	updateItemStockSQL = `UPDATE items
		SET stock_number = $2, updated_at = $3, modified_by = $4
		WHERE item_id = $1`

	getImageSQL = `SELECT item_image_id, item_id, image_url, original_name, representative,
			created_at, updated_at, created_by, modified_by
		FROM item_images WHERE item_image_id = $1`

	listImagesSQL = `SELECT item_image_id, item_id, image_url, original_name, representative,
			created_at, updated_at, created_by, modified_by
		FROM item_images WHERE item_id = $1 ORDER BY item_image_id`

	insertImageSQL = `INSERT INTO item_images (item_id, image_url, original_name, representative,
			created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING item_image_id`

	updateImageSQL = `UPDATE item_images
		SET image_url = $2, original_name = $3, representative = $4, updated_at = $5, modified_by = $6
		WHERE item_image_id = $1`
)

func scanItem(row pgx.CollectableRow) (item.Item, error) {
	var it item.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.Price, &it.Stock, &it.Detail, &it.Status,
		&it.Audit.CreatedAt, &it.Audit.UpdatedAt, &it.Audit.CreatedBy, &it.Audit.ModifiedBy,
	)
	return it, err
}

func scanImage(row pgx.CollectableRow) (item.Image, error) {
	var img item.Image
	err := row.Scan(
		&img.ID, &img.ItemID, &img.URL, &img.OriginalName, &img.Representative,
		&img.Audit.CreatedAt, &img.Audit.UpdatedAt, &img.Audit.CreatedBy, &img.Audit.ModifiedBy,
	)
	return img, err
}

func getItem(ctx context.Context, q querier, sql string, id int64) (*item.Item, error) {
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting item %d", id)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting item %d", id)
	}
	return &it, nil
}

// ItemByID returns a single item inside the transaction.
func (t *Tx) ItemByID(ctx context.Context, id int64) (*item.Item, error) {
	return getItem(ctx, t.tx, getItemSQL, id)
}

// ItemForUpdate returns the item with its row locked until commit.
// Concurrent stock mutations on the same item serialize here.
func (t *Tx) ItemForUpdate(ctx context.Context, id int64) (*item.Item, error) {
	return getItem(ctx, t.tx, getItemForUpdateSQL, id)
}

// SaveItem inserts the item when it has no id yet, otherwise updates it.
// Audit fields are stamped before the write.
func (t *Tx) SaveItem(ctx context.Context, it *item.Item) error {
	if it.ID == 0 {
		t.audit.stampNew(&it.Audit)
		err := t.tx.QueryRow(ctx, insertItemSQL,
			it.Name, it.Price, it.Stock, it.Detail, it.Status,
			it.Audit.CreatedAt, it.Audit.UpdatedAt, it.Audit.CreatedBy, it.Audit.ModifiedBy,
		).Scan(&it.ID)
		return errors.Wrap(err, "inserting item")
	}

	t.audit.stampUpdate(&it.Audit)
	_, err := t.tx.Exec(ctx, updateItemSQL,
		it.ID, it.Name, it.Price, it.Stock, it.Detail, it.Status,
		it.Audit.UpdatedAt, it.Audit.ModifiedBy,
	)
	return errors.Wrapf(err, "updating item %d", it.ID)
}

// UpdateItemStock persists only the stock mutation of a debit or credit.
func (t *Tx) UpdateItemStock(ctx context.Context, it *item.Item) error {
	t.audit.stampUpdate(&it.Audit)
	_, err := t.tx.Exec(ctx, updateItemStockSQL,
		it.ID, it.Stock, it.Audit.UpdatedAt, it.Audit.ModifiedBy,
	)
	return errors.Wrapf(err, "updating stock of item %d", it.ID)
}

// ImageByID returns a single image row.
func (t *Tx) ImageByID(ctx context.Context, id int64) (*item.Image, error) {
	rows, err := t.tx.Query(ctx, getImageSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting image %d", id)
	}

	img, err := pgx.CollectExactlyOneRow(rows, scanImage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Errorf("image %d not found", id)
		}
		return nil, errors.Wrapf(err, "getting image %d", id)
	}
	return &img, nil
}

// ImagesByItem lists an item's images ordered by id.
func (t *Tx) ImagesByItem(ctx context.Context, itemID int64) ([]item.Image, error) {
	return listImages(ctx, t.tx, itemID)
}

// SaveImage inserts or updates an image row.
func (t *Tx) SaveImage(ctx context.Context, img *item.Image) error {
	if img.ID == 0 {
		t.audit.stampNew(&img.Audit)
		err := t.tx.QueryRow(ctx, insertImageSQL,
			img.ItemID, img.URL, img.OriginalName, img.Representative,
			img.Audit.CreatedAt, img.Audit.UpdatedAt, img.Audit.CreatedBy, img.Audit.ModifiedBy,
		).Scan(&img.ID)
		return errors.Wrap(err, "inserting image")
	}

	t.audit.stampUpdate(&img.Audit)
	_, err := t.tx.Exec(ctx, updateImageSQL,
		img.ID, img.URL, img.OriginalName, img.Representative,
		img.Audit.UpdatedAt, img.Audit.ModifiedBy,
	)
	return errors.Wrapf(err, "updating image %d", img.ID)
}

func listImages(ctx context.Context, q querier, itemID int64) ([]item.Image, error) {
	rows, err := q.Query(ctx, listImagesSQL, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing images of item %d", itemID)
	}
	return pgx.CollectRows(rows, scanImage)
}

var _ item.Reader = (*ItemReader)(nil)

// ItemReader serves read-only item lookups outside a transaction.
type ItemReader struct {
	pool *pgxpool.Pool
}

// NewItemReader returns an ItemReader over the given pool.
func NewItemReader(pool *pgxpool.Pool) *ItemReader {
	return &ItemReader{pool: pool}
}

// ItemByID returns a single item by its identifier.
func (r *ItemReader) ItemByID(ctx context.Context, id int64) (*item.Item, error) {
	return getItem(ctx, r.pool, getItemSQL, id)
}

// ImagesByItem lists an item's images ordered by id.
func (r *ItemReader) ImagesByItem(ctx context.Context, itemID int64) ([]item.Image, error) {
	return listImages(ctx, r.pool, itemID)
}

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository executes the composed search filters for the admin and
// public listings.
type CatalogRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewCatalogRepository returns a CatalogRepository over the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool, now: time.Now}
}

// AdminItemPage returns a full entity page, newest items first.
func (r *CatalogRepository) AdminItemPage(ctx context.Context, f catalog.Filter, req paging.Request) (paging.Page[item.Item], error) {
	var zero paging.Page[item.Item]

	where, err := itemFilterWhere(f, r.now(), "")
	if err != nil {
		return zero, err
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM items` + where.clause()
	if err := r.pool.QueryRow(ctx, countSQL, where.args...).Scan(&total); err != nil {
		return zero, errors.Wrap(err, "counting items")
	}

	pageSQL := `SELECT ` + itemColumns + ` FROM items` + where.clause() +
		fmt.Sprintf(" ORDER BY item_id DESC LIMIT $%d OFFSET $%d", where.next(), where.next()+1)
	rows, err := r.pool.Query(ctx, pageSQL, append(where.args, req.Size, req.Offset())...)
	if err != nil {
		return zero, errors.Wrap(err, "listing items")
	}

	content, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return zero, errors.Wrap(err, "scanning items")
	}
	return paging.NewPage(content, req, total), nil
}

// DisplayItemPage returns the public storefront page: items joined to
// their representative image, newest first. Items without a
// representative image are excluded by the inner join.
func (r *CatalogRepository) DisplayItemPage(ctx context.Context, f catalog.Filter, req paging.Request) (paging.Page[catalog.DisplayItem], error) {
	var zero paging.Page[catalog.DisplayItem]

	where, err := itemFilterWhere(f, r.now(), "i.")
	if err != nil {
		return zero, err
	}

	const fromJoin = ` FROM items i
		JOIN item_images im ON im.item_id = i.item_id AND im.representative`

	var total int64
	countSQL := `SELECT COUNT(*)` + fromJoin + where.clause()
	if err := r.pool.QueryRow(ctx, countSQL, where.args...).Scan(&total); err != nil {
		return zero, errors.Wrap(err, "counting display items")
	}

	pageSQL := `SELECT i.item_id, i.item_name, i.item_detail, i.price, im.image_url` +
		fromJoin + where.clause() +
		fmt.Sprintf(" ORDER BY i.item_id DESC LIMIT $%d OFFSET $%d", where.next(), where.next()+1)
	rows, err := r.pool.Query(ctx, pageSQL, append(where.args, req.Size, req.Offset())...)
	if err != nil {
		return zero, errors.Wrap(err, "listing display items")
	}

	content, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.DisplayItem, error) {
		var d catalog.DisplayItem
		err := row.Scan(&d.ID, &d.Name, &d.Detail, &d.Price, &d.ImageURL)
		return d, err
	})
	if err != nil {
		return zero, errors.Wrap(err, "scanning display items")
	}
	return paging.NewPage(content, req, total), nil
}
