package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken rows are the sole authority for refresh validity: a token whose
// row is gone is rejected no matter what its embedded expiry says.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null"     json:"token"`
	ExpiresAt int64     `gorm:"not null"        json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
	Slug string `gorm:"uniqueIndex;not null"     json:"slug"`
}

type Photo struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string  `gorm:"not null"                 json:"title"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	CategoryID  uint    `gorm:"index"                    json:"category_id"`
	StorageKey  string  `gorm:"uniqueIndex"              json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CartItem struct {
	ID       uint      `gorm:"primaryKey"                 json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null"   json:"user_id"`
	PhotoID  uint      `gorm:"not null"                   json:"photo_id"`
	Quantity uint      `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type OrderStatus = string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusSubmitted OrderStatus = "submitted"
)

type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
	Status     OrderStatus `gorm:"not null"                 json:"status"`
	Total      float64     `gorm:"not null"                 json:"total"`
	ExternalID string      `json:"external_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []OrderItem `json:"items"`
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	PhotoID   uint      `gorm:"not null"                 json:"photo_id"`
	Quantity  uint      `gorm:"default:1;check:quantity>0" json:"quantity"`
	UnitPrice float64   `gorm:"not null"                 json:"unit_price"`
	LineTotal float64   `gorm:"not null"                 json:"line_total"`
}
