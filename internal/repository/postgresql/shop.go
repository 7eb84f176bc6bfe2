package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shopRepositoryImpl struct {
	db *database.DB
}

func NewShopRepository(db *database.DB) shop.ShopRepository {
	return &shopRepositoryImpl{db: db}
}

// GetByID implements shop.ShopRepository.
func (r *shopRepositoryImpl) GetByID(ctx context.Context, id string) (shop.Shop, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, cycle_start_day, created_at, updated_at
		FROM shops
		WHERE id = $1
	`

	var s shop.Shop
	var cycleStartDay *int16
	err := q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &cycleStartDay, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shop.Shop{}, shop.ErrShopNotFound
		}
		return shop.Shop{}, fmt.Errorf("failed to get shop by ID: %w", err)
	}
	if cycleStartDay != nil {
		day := int(*cycleStartDay)
		s.CycleStartDay = &day
	}
	return s, nil
}
