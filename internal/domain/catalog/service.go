package catalog

import (
	"context"
	"time"

	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/paging"
)

// DisplayItem is the slim projection shown on the public storefront: the
// item joined to its representative image. Items without a representative
// image never appear here.
type DisplayItem struct {
	ID       int64
	Name     string
	Detail   string
	Price    int64
	ImageURL string
}

// Repository executes composed filter queries. Both pages order by item id
// descending (newest registered first) and apply offset/limit from the
// page request.
type Repository interface {
	AdminItemPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[item.Item], error)
	DisplayItemPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[DisplayItem], error)
}

// Service validates search filters and delegates paged listing queries.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a catalog Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// AdminItemPage returns the full entity page used by the admin listing.
func (s *Service) AdminItemPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[item.Item], error) {
	if err := f.Validate(s.now()); err != nil {
		return paging.Page[item.Item]{}, err
	}
	return s.repo.AdminItemPage(ctx, f, req)
}

// DisplayItemPage returns the public storefront page.
func (s *Service) DisplayItemPage(ctx context.Context, f Filter, req paging.Request) (paging.Page[DisplayItem], error) {
	if err := f.Validate(s.now()); err != nil {
		return paging.Page[DisplayItem]{}, err
	}
	return s.repo.DisplayItemPage(ctx, f, req)
}
