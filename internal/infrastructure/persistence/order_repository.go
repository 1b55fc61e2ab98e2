package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/ordering"
	"github.com/resto/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with items and persons
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Persons").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its human-facing number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Persons").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists orders matching the filter with pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, filter ordering.OrderFilter) (*shared.Paginated[ordering.Order], error) {
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&ordering.Order{}),
		filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	pageSize := filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var orders []ordering.Order
	if err := r.applyOrdering(query, filter).
		Offset((page-1)*pageSize).
		Limit(pageSize).
		Preload("Items").
		Preload("Persons").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, page, pageSize)
	return &result, nil
}

// Save inserts a new order together with its items and persons
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// SaveWithVersion commits a mutation only when the stored version still
// equals order.Version. The conditional UPDATE is the compare-and-swap: a
// zero row count means another writer committed first and the caller gets
// shared.ErrStaleVersion to reload and retry.
func (r *GormOrderRepository) SaveWithVersion(ctx context.Context, order *ordering.Order) error {
	expectedVersion := order.Version

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&ordering.Order{}).
			Where("id = ? AND version = ?", order.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":        order.Status,
				"table_number":  order.TableNumber,
				"customer_id":   order.CustomerID,
				"waiter_id":     order.WaiterID,
				"total_amount":  order.TotalAmount,
				"notes":         order.Notes,
				"closed_at":     order.ClosedAt,
				"cancelled_at":  order.CancelledAt,
				"cancel_reason": order.CancelReason,
				"version":       expectedVersion + 1,
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&ordering.Order{}).
				Where("id = ?", order.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrStaleVersion
		}

		if err := r.syncItems(tx, order); err != nil {
			return err
		}
		return r.syncPersons(tx, order)
	})
	if err != nil {
		return err
	}

	order.IncrementVersion()
	return nil
}

// syncItems deletes removed item rows and upserts the current ones
func (r *GormOrderRepository) syncItems(tx *gorm.DB, order *ordering.Order) error {
	currentIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentIDs[i] = item.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentIDs).
			Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// syncPersons deletes removed person rows and upserts the current ones
func (r *GormOrderRepository) syncPersons(tx *gorm.DB, order *ordering.Order) error {
	currentIDs := make([]uuid.UUID, len(order.Persons))
	for i, person := range order.Persons {
		currentIDs[i] = person.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentIDs).
			Delete(&ordering.Person{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&ordering.Person{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Persons {
		order.Persons[i].OrderID = order.ID
		if err := tx.Save(&order.Persons[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateOrderNumber generates the next sequential order number.
// Format: POS-YYYY-NNNNN (e.g. POS-2026-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("POS-%d-", year)

	var lastOrder ordering.Order
	err := r.db.WithContext(ctx).
		Model(&ordering.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// CountByStatus returns order counts grouped by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[ordering.OrderStatus]int64, error) {
	type statusCount struct {
		Status ordering.OrderStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&ordering.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[ordering.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// applyOrdering applies the sort clause from the filter
func (r *GormOrderRepository) applyOrdering(query *gorm.DB, filter ordering.OrderFilter) *gorm.DB {
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		return query.Order(filter.OrderBy + " " + orderDir)
	}
	return query.Order("opened_at DESC")
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter ordering.OrderFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR table_number ILIKE ?",
			searchPattern, searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TableNumber != nil {
		query = query.Where("table_number = ?", *filter.TableNumber)
	}
	if filter.WaiterID != nil {
		query = query.Where("waiter_id = ?", *filter.WaiterID)
	}
	if filter.OpenOnly {
		query = query.Where("status NOT IN ?", []ordering.OrderStatus{
			ordering.OrderStatusCompleted,
			ordering.OrderStatusCancelled,
		})
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
