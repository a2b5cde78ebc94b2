package item

import (
	"context"

	"github.com/go-faster/errors"
)

// Tx groups the item persistence operations available inside one unit of
// work.
type Tx interface {
	ItemByID(ctx context.Context, id int64) (*Item, error)
	SaveItem(ctx context.Context, it *Item) error
	ImageByID(ctx context.Context, id int64) (*Image, error)
	ImagesByItem(ctx context.Context, itemID int64) ([]Image, error)
	SaveImage(ctx context.Context, img *Image) error
}

// Store opens a unit of work. Every write inside fn is stamped with actor
// and committed atomically; any error rolls the whole transaction back.
type Store interface {
	WithinTx(ctx context.Context, actor string, fn func(tx Tx) error) error
}

// Reader provides the read-only lookups used outside a transaction.
type Reader interface {
	ItemByID(ctx context.Context, id int64) (*Item, error)
	ImagesByItem(ctx context.Context, itemID int64) ([]Image, error)
}

// Form carries the validated input for creating or editing an item.
type Form struct {
	Name   string
	Price  int64
	Stock  int64
	Detail string
	Status SellStatus
}

// ImageUpload references an already-uploaded image file.
type ImageUpload struct {
	URL          string
	OriginalName string
}

// ImageUpdate replaces the file reference of an existing image row.
type ImageUpdate struct {
	ID           int64
	URL          string
	OriginalName string
}

// Detail is an item together with its images, ordered by image id.
type Detail struct {
	Item   Item
	Images []Image
}

// Service implements catalog item management.
type Service struct {
	store  Store
	reader Reader
}

// NewService creates an item Service.
func NewService(store Store, reader Reader) *Service {
	return &Service{store: store, reader: reader}
}

// SaveItem registers a new item with its images. The first image becomes
// the representative one. Returns the new item's id.
func (s *Service) SaveItem(ctx context.Context, actor string, form Form, images []ImageUpload) (int64, error) {
	it, err := New(form.Name, form.Price, form.Stock, form.Detail, form.Status)
	if err != nil {
		return 0, err
	}

	err = s.store.WithinTx(ctx, actor, func(tx Tx) error {
		if err := tx.SaveItem(ctx, it); err != nil {
			return errors.Wrap(err, "save item")
		}
		for i, up := range images {
			img := &Image{
				ItemID:         it.ID,
				URL:            up.URL,
				OriginalName:   up.OriginalName,
				Representative: i == 0,
			}
			if err := tx.SaveImage(ctx, img); err != nil {
				return errors.Wrap(err, "save image")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return it.ID, nil
}

// UpdateItem edits an existing item and optionally swaps image file
// references. Returns the item's id.
func (s *Service) UpdateItem(ctx context.Context, actor string, id int64, form Form, images []ImageUpdate) (int64, error) {
	err := s.store.WithinTx(ctx, actor, func(tx Tx) error {
		it, err := tx.ItemByID(ctx, id)
		if err != nil {
			return err
		}
		if err := it.Update(form.Name, form.Price, form.Stock, form.Detail, form.Status); err != nil {
			return err
		}
		if err := tx.SaveItem(ctx, it); err != nil {
			return errors.Wrap(err, "save item")
		}

		for _, up := range images {
			img, err := tx.ImageByID(ctx, up.ID)
			if err != nil {
				return err
			}
			if img.ItemID != id {
				return errors.Errorf("image %d does not belong to item %d", up.ID, id)
			}
			img.URL = up.URL
			img.OriginalName = up.OriginalName
			if err := tx.SaveImage(ctx, img); err != nil {
				return errors.Wrap(err, "save image")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ItemDetail returns an item with all its images.
func (s *Service) ItemDetail(ctx context.Context, id int64) (*Detail, error) {
	it, err := s.reader.ItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.reader.ImagesByItem(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "load images")
	}
	return &Detail{Item: *it, Images: images}, nil
}
