package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"example.com/sales-console/services/sales/internal/domain"
)

// CustomerRepository определяет интерфейс справочника клиентов.
type CustomerRepository interface {
	// GetByID возвращает клиента с балансами.
	GetByID(ctx context.Context, id string) (domain.Customer, error)
}

// CustomerModel — GORM модель для таблицы customers.
type CustomerModel struct {
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Name           string    `gorm:"column:name;type:varchar(255);not null"`
	Currency       string    `gorm:"column:currency;type:varchar(3);not null"`
	PendingBalance int64     `gorm:"column:pending_balance;not null"`
	AdvanceBalance int64     `gorm:"column:advance_balance;not null"`
	CreditLimit    int64     `gorm:"column:credit_limit;not null"`
	CurrentBalance int64     `gorm:"column:current_balance;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName возвращает имя таблицы в БД.
func (CustomerModel) TableName() string {
	return "customers"
}

// toDomain конвертирует GORM модель клиента в доменную сущность.
func (m *CustomerModel) toDomain() domain.Customer {
	return domain.Customer{
		ID:             m.ID,
		Name:           m.Name,
		PendingBalance: domain.Money{Currency: m.Currency, Amount: m.PendingBalance},
		AdvanceBalance: domain.Money{Currency: m.Currency, Amount: m.AdvanceBalance},
		CreditLimit:    domain.Money{Currency: m.Currency, Amount: m.CreditLimit},
		CurrentBalance: domain.Money{Currency: m.Currency, Amount: m.CurrentBalance},
	}
}

// customerRepository — GORM реализация CustomerRepository.
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository создаёт новый репозиторий клиентов.
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// GetByID возвращает клиента по ID.
func (r *customerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	var model CustomerModel

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("ошибка получения клиента: %w", err)
	}

	return model.toDomain(), nil
}
