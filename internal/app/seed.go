package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/product"
)

// catalogSeed is the initial Imunofan product lineup. Prices are in BGN.
var catalogSeed = []product.Product{
	{
		Name:        "Инжекционен разтвор",
		Description: "Най-ефективна форма на приложение. Подходящ за тежки състояния и болнична употреба. 5 ампули по 1 мл.",
		Price:       decimal.RequireFromString("89.99"),
		Type:        product.TypeInjection,
		Image:       "https://images.unsplash.com/photo-1631549916768-4119b2e5f926?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=400",
		Features:    []string{"Най-ефективна форма", "Бързо усвояване", "За тежки състояния", "5 ампули по 1 мл"},
		InStock:     true,
	},
	{
		Name:        "Назален спрей",
		Description: "Удобен за ежедневна употреба. Подходящ за профилактика и леки до умерени случаи. 10 мл флакон.",
		Price:       decimal.RequireFromString("69.99"),
		Type:        product.TypeNasalSpray,
		Image:       "https://images.unsplash.com/photo-1584308666744-24d5c474f2ae?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=400",
		Features:    []string{"Лесно приложение", "Подходящ за деца", "Без инжекции", "10 мл флакон"},
		InStock:     true,
	},
	{
		Name:        "Ректални супозитории",
		Description: "Специално подходящ за деца над 2 години и пациенти с проблеми с храносмилането. 10 супозитория.",
		Price:       decimal.RequireFromString("79.99"),
		Type:        product.TypeSuppository,
		Image:       "https://images.unsplash.com/photo-1471864190281-a93a3070b6de?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=400",
		Features:    []string{"Системно действие", "Удобно приложение", "Дълготрайно освобождаване", "10 супозитория"},
		InStock:     true,
	},
}

// SeedProducts inserts the initial catalog. It is a no-op when any products
// already exist, so it is safe to run on every deploy.
func SeedProducts(ctx context.Context, repo product.Repository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list products")
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i := range catalogSeed {
		p := catalogSeed[i]
		if err := repo.Create(ctx, &p); err != nil {
			return i, errors.Wrapf(err, "create product %q", p.Name)
		}
	}
	return len(catalogSeed), nil
}
