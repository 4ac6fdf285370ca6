package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/pkg/storage"
)

// CatalogService reads the fixed menu.
type CatalogService struct {
	menu   repositories.MenuRepository
	images *storage.Manager
}

func NewCatalogService(menu repositories.MenuRepository, images *storage.Manager) *CatalogService {
	return &CatalogService{menu: menu, images: images}
}

// List returns the menu in seed order.
func (s *CatalogService) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.menu.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return items, nil
}

// Find reports whether id is on the menu.
func (s *CatalogService) Find(ctx context.Context, id uint) (models.MenuItem, bool, error) {
	item, err := s.menu.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.MenuItem{}, false, nil
	}
	if err != nil {
		return models.MenuItem{}, false, fmt.Errorf("catalog: %w", err)
	}
	return item, true, nil
}

// ImageURL is the public URL of the item's picture on the default disk.
func (s *CatalogService) ImageURL(item models.MenuItem) string {
	return s.images.URL(item.ImagePath())
}

func (s *CatalogService) index(ctx context.Context) (map[uint]models.MenuItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return byID, nil
}
