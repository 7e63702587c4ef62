package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/models"
)

func duplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

// Categories

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		if duplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) GetCategories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := r.DB.WithContext(ctx).Save(c).Error; err != nil {
		if duplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return c, nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Topics

func (r *GormRepo) CreateTopic(ctx context.Context, t *models.Topic) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		if duplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	var t models.Topic
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormRepo) GetTopics(ctx context.Context) (int64, []models.Topic, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Topic{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var ts []models.Topic
	if err := r.DB.WithContext(ctx).Order("updated_at DESC").Find(&ts).Error; err != nil {
		return 0, nil, err
	}
	return total, ts, nil
}

func (r *GormRepo) UpdateTopic(ctx context.Context, id uuid.UUID, name string, categoryID uuid.UUID) (*models.Topic, error) {
	t, err := r.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.CategoryID = categoryID
	if err := r.DB.WithContext(ctx).Save(t).Error; err != nil {
		if duplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return t, nil
}

func (r *GormRepo) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Topic{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) TopicsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Topic, error) {
	var ts []models.Topic
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

// Brands

// CreateBrands inserts the whole batch in one transaction; a single
// duplicate name rolls back every row.
func (r *GormRepo) CreateBrands(ctx context.Context, brands []models.Brand) ([]models.Brand, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range brands {
			if err := tx.Create(&brands[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if duplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return brands, nil
}

func (r *GormRepo) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var b models.Brand
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) GetBrands(ctx context.Context) ([]models.Brand, error) {
	var bs []models.Brand
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&bs).Error; err != nil {
		return nil, err
	}
	return bs, nil
}

func (r *GormRepo) UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*models.Brand, error) {
	b, err := r.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Name = name
	if err := r.DB.WithContext(ctx).Save(b).Error; err != nil {
		if duplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return b, nil
}

func (r *GormRepo) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Brand{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Series

func (r *GormRepo) CreateSeries(ctx context.Context, s *models.Series) error {
	if err := r.DB.WithContext(ctx).Create(s).Error; err != nil {
		if duplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetSeries(ctx context.Context, brandID, id uuid.UUID) (*models.Series, error) {
	var s models.Series
	if err := r.DB.WithContext(ctx).Where("brand_id = ? AND id = ?", brandID, id).First(&s).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) GetSeriesByID(ctx context.Context, id uuid.UUID) (*models.Series, error) {
	var s models.Series
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) GetAllSeries(ctx context.Context) ([]models.Series, error) {
	var ss []models.Series
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *GormRepo) GetSeriesByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Series, error) {
	var ss []models.Series
	if err := r.DB.WithContext(ctx).Where("brand_id = ?", brandID).Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *GormRepo) UpdateSeries(ctx context.Context, s *models.Series) error {
	if err := r.DB.WithContext(ctx).Save(s).Error; err != nil {
		if duplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) DeleteSeries(ctx context.Context, brandID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("brand_id = ?", brandID).Delete(&models.Series{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Products

// CreateProduct inserts the product and its topic associations together so a
// failed association never leaves a half-tagged product behind.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product, topics []models.Topic) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if len(topics) > 0 {
			if err := tx.Model(p).Association("Topics").Append(topics); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if duplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Topics").Where("id = ?", id).First(&p).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Preload("Topics").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	if err := r.DB.WithContext(ctx).Save(p).Error; err != nil {
		if duplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Select("Topics").Delete(&models.Product{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
