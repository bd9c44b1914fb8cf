package repositories

import (
	"errors"
	"time"

	"CryptoModelBot/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create adds a new Order record to the database
func (r *OrderRepository) Create(order *models.Order) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	return r.db.Create(order).Error
}

// FindByID retrieves an Order record by its ID
func (r *OrderRepository) FindByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, errors.New("invalid id")
	}
	var order models.Order
	err := r.db.First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

// Update modifies an existing Order record
func (r *OrderRepository) Update(order *models.Order) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	return r.db.Save(order).Error
}

// FindBySymbol retrieves all orders for a symbol, newest first
func (r *OrderRepository) FindBySymbol(symbol string) ([]models.Order, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var orders []models.Order
	err := r.db.Where("symbol = ?", symbol).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// GetOrdersByTimeRange retrieves orders created within a time range
func (r *OrderRepository) GetOrdersByTimeRange(start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("created_at BETWEEN ? AND ?", start, end).Order("created_at ASC").Find(&orders).Error
	return orders, err
}
