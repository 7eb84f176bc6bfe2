package shop

import "context"

type ShopRepository interface {
	GetByID(ctx context.Context, id string) (Shop, error)
}
