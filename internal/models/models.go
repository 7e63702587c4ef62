package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Username      string    `gorm:"size:64;uniqueIndex;not null"  json:"username"`
	Email         string    `gorm:"size:256;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"not null"                      json:"-"`
	Role          string    `gorm:"size:16;not null;default:user" json:"role"`
	EmailVerified bool      `gorm:"not null;default:false"        json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Categories []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RevokedToken is a blocklist entry. A jti present here is rejected on every
// protected request, regardless of signature validity or expiry.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                   json:"id"`
	JTI       string    `gorm:"size:36;uniqueIndex;not null" json:"jti"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"         json:"id"`
	Name      string     `gorm:"size:80;uniqueIndex;not null" json:"name"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"              json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Topics []Topic `gorm:"foreignKey:CategoryID" json:"topics,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Topic struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Name       string    `gorm:"size:80;uniqueIndex;not null" json:"name"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null"     json:"category_id"`
	UserID     uuid.UUID `gorm:"type:uuid;index"              json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Name      string    `gorm:"size:80;uniqueIndex;not null" json:"name"`
	UserID    uuid.UUID `gorm:"type:uuid;index"              json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Series []Series `gorm:"foreignKey:BrandID" json:"series,omitempty"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type Series struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Name      string    `gorm:"size:80;uniqueIndex;not null" json:"name"`
	BrandID   uuid.UUID `gorm:"type:uuid;index;not null"     json:"brand_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index"              json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Series) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"          json:"id"`
	Name               string         `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Description        string         `json:"description"`
	Price              float64        `gorm:"not null"                      json:"price"`
	StockQuantity      uint           `gorm:"not null;default:0"            json:"stock_quantity"`
	SpecificAttributes map[string]any `gorm:"serializer:json"               json:"specific_attributes,omitempty"`
	SeriesID           uuid.UUID      `gorm:"type:uuid;index;not null"      json:"series_id"`
	UserID             uuid.UUID      `gorm:"type:uuid;index"               json:"user_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	Topics []Topic `gorm:"many2many:product_topics" json:"topics,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
