package service

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/google/uuid"

	"github.com/Skotchmaster/store_api/internal/events"
	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/search"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
	Index    *search.Index
}

func validateCategoryName(name string) error {
	if len(name) < 3 || len(name) > 50 {
		return fmt.Errorf("%w: name must be 3-50 characters", ErrValidation)
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			return fmt.Errorf("%w: name must not contain numbers", ErrValidation)
		}
	}
	return nil
}

func validateName(name string) error {
	if len(name) < 1 || len(name) > 80 {
		return fmt.Errorf("%w: name must be 1-80 characters", ErrValidation)
	}
	return nil
}

func (s *CatalogService) publish(ctx context.Context, key string, event map[string]any) {
	if err := s.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", events.TopicProductEvents, "error", err)
	}
}

// Categories

func (s *CatalogService) CreateCategory(ctx context.Context, name string, userID *uuid.UUID) (*models.Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	c := models.Category{Name: name, UserID: userID}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a category with name '%s' already exists", ErrConflict, name)
		}
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.GetCategories(ctx)
}

func (s *CatalogService) Category(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	c, err := s.Repo.UpdateCategory(ctx, id, name)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repo.ErrConflict):
		return nil, fmt.Errorf("%w: a category with name '%s' already exists", ErrConflict, name)
	}
	return c, err
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) (string, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return "", err
	}
	return c.Name, nil
}

// Topics

func (s *CatalogService) CreateTopic(ctx context.Context, name string, categoryID, userID uuid.UUID) (*models.Topic, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: category not found", ErrNotFound)
		}
		return nil, err
	}
	t := models.Topic{Name: name, CategoryID: categoryID, UserID: userID}
	if err := s.Repo.CreateTopic(ctx, &t); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a topic with name '%s' already exists", ErrConflict, name)
		}
		return nil, err
	}
	return &t, nil
}

func (s *CatalogService) Topics(ctx context.Context) (int64, []models.Topic, error) {
	return s.Repo.GetTopics(ctx)
}

func (s *CatalogService) Topic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	t, err := s.Repo.GetTopic(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *CatalogService) UpdateTopic(ctx context.Context, id uuid.UUID, name string, categoryID uuid.UUID) (*models.Topic, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: category not found", ErrNotFound)
		}
		return nil, err
	}
	t, err := s.Repo.UpdateTopic(ctx, id, name, categoryID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repo.ErrConflict):
		return nil, fmt.Errorf("%w: a topic with name '%s' already exists", ErrConflict, name)
	}
	return t, err
}

func (s *CatalogService) DeleteTopic(ctx context.Context, id uuid.UUID) (string, error) {
	t, err := s.Repo.GetTopic(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := s.Repo.DeleteTopic(ctx, id); err != nil {
		return "", err
	}
	return t.Name, nil
}

// Brands

func (s *CatalogService) CreateBrands(ctx context.Context, names []string, userID uuid.UUID) ([]models.Brand, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one brand is required", ErrValidation)
	}
	brands := make([]models.Brand, 0, len(names))
	for _, name := range names {
		if err := validateName(name); err != nil {
			return nil, err
		}
		brands = append(brands, models.Brand{Name: name, UserID: userID})
	}
	created, err := s.Repo.CreateBrands(ctx, brands)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a brand with one of these names already exists", ErrConflict)
		}
		return nil, err
	}
	return created, nil
}

func (s *CatalogService) Brands(ctx context.Context) ([]models.Brand, error) {
	return s.Repo.GetBrands(ctx)
}

func (s *CatalogService) Brand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	b, err := s.Repo.GetBrand(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*models.Brand, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	b, err := s.Repo.GetBrand(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.Name == name {
		return nil, ErrSameName
	}
	updated, err := s.Repo.UpdateBrand(ctx, id, name)
	if errors.Is(err, repo.ErrConflict) {
		return nil, fmt.Errorf("%w: a brand with name '%s' already exists", ErrConflict, name)
	}
	return updated, err
}

func (s *CatalogService) DeleteBrand(ctx context.Context, id uuid.UUID) (string, error) {
	b, err := s.Repo.GetBrand(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := s.Repo.DeleteBrand(ctx, id); err != nil {
		return "", err
	}
	return b.Name, nil
}

// Series

func (s *CatalogService) CreateSeries(ctx context.Context, brandID uuid.UUID, name string, userID uuid.UUID) (*models.Series, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetBrand(ctx, brandID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sr := models.Series{Name: name, BrandID: brandID, UserID: userID}
	if err := s.Repo.CreateSeries(ctx, &sr); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a series with name '%s' already exists", ErrConflict, name)
		}
		return nil, err
	}
	return &sr, nil
}

func (s *CatalogService) AllSeries(ctx context.Context) ([]models.Series, error) {
	return s.Repo.GetAllSeries(ctx)
}

func (s *CatalogService) SeriesByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Series, error) {
	return s.Repo.GetSeriesByBrand(ctx, brandID)
}

func (s *CatalogService) Series(ctx context.Context, brandID, id uuid.UUID) (*models.Series, error) {
	sr, err := s.Repo.GetSeries(ctx, brandID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return sr, err
}

func (s *CatalogService) UpdateSeries(ctx context.Context, brandID, id uuid.UUID, name string, newBrandID *uuid.UUID) (*models.Series, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	sr, err := s.Repo.GetSeries(ctx, brandID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sr.Name == name {
		return nil, ErrSameName
	}
	sr.Name = name
	if newBrandID != nil && *newBrandID != brandID {
		sr.BrandID = *newBrandID
	}
	if err := s.Repo.UpdateSeries(ctx, sr); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a series with name '%s' already exists", ErrConflict, name)
		}
		return nil, err
	}
	return sr, nil
}

func (s *CatalogService) DeleteSeries(ctx context.Context, brandID, id uuid.UUID) (string, error) {
	sr, err := s.Repo.GetSeries(ctx, brandID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := s.Repo.DeleteSeries(ctx, brandID, id); err != nil {
		return "", err
	}
	return sr.Name, nil
}

// Products

type ProductInput struct {
	Name               string
	Description        string
	Price              float64
	StockQuantity      uint
	SpecificAttributes map[string]any
	SeriesID           uuid.UUID
	TopicIDs           []uuid.UUID
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, userID uuid.UUID) (*models.Product, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	series, err := s.Repo.GetSeriesByID(ctx, in.SeriesID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: series not found", ErrNotFound)
		}
		return nil, err
	}

	topics, err := s.Repo.TopicsByIDs(ctx, in.TopicIDs)
	if err != nil {
		return nil, err
	}
	if len(in.TopicIDs) > 0 && len(topics) == 0 {
		return nil, fmt.Errorf("%w: invalid topic IDs provided", ErrValidation)
	}

	p := models.Product{
		Name:               in.Name,
		Description:        in.Description,
		Price:              in.Price,
		StockQuantity:      in.StockQuantity,
		SpecificAttributes: in.SpecificAttributes,
		SeriesID:           series.ID,
		UserID:             userID,
	}
	if err := s.Repo.CreateProduct(ctx, &p, topics); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a product with name '%s' already exists", ErrConflict, in.Name)
		}
		return nil, err
	}
	p.Topics = topics

	if err := s.Index.IndexProduct(ctx, &p); err != nil {
		logging.FromContext(ctx).Error("product index failed", "product_id", p.ID, "error", err)
	}
	s.publish(ctx, p.ID.String(), map[string]any{
		"type":       "product_created",
		"product_id": p.ID.String(),
		"name":       p.Name,
	})

	return &p, nil
}

func (s *CatalogService) Products(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, offset, limit)
}

func (s *CatalogService) Product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

type ProductPatch struct {
	Name               *string
	Description        *string
	Price              *float64
	StockQuantity      *uint
	SpecificAttributes map[string]any
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		p.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.SpecificAttributes != nil {
		p.SpecificAttributes = patch.SpecificAttributes
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: a product with name '%s' already exists", ErrConflict, p.Name)
		}
		return nil, err
	}

	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("product index failed", "product_id", p.ID, "error", err)
	}
	s.publish(ctx, p.ID.String(), map[string]any{
		"type":       "product_updated",
		"product_id": p.ID.String(),
		"name":       p.Name,
	})

	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return "", err
	}

	if err := s.Index.DeleteProduct(ctx, id.String()); err != nil {
		logging.FromContext(ctx).Error("product deindex failed", "product_id", id, "error", err)
	}
	s.publish(ctx, id.String(), map[string]any{
		"type":       "product_deleted",
		"product_id": id.String(),
		"name":       p.Name,
	})

	return p.Name, nil
}
