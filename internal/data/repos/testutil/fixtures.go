package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/playbook-backend/internal/domain"
)

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Product {
	tb.Helper()
	p := &types.Product{Title: title, Description: "product"}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uint64, title string) *types.Item {
	tb.Helper()
	it := &types.Item{ProductID: productID, Title: title}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func SeedSubitem(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID uint64, title string) *types.Subitem {
	tb.Helper()
	s := &types.Subitem{ItemID: itemID, Title: title, Description: "body"}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subitem: %v", err)
	}
	return s
}

func SeedScenario(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Scenario {
	tb.Helper()
	s := &types.Scenario{Title: title, Description: "scenario"}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed scenario: %v", err)
	}
	return s
}

func SeedLink(tb testing.TB, ctx context.Context, tx *gorm.DB, scenarioID, itemID uint64, order int) *types.ScenarioItem {
	tb.Helper()
	l := &types.ScenarioItem{ScenarioID: scenarioID, ItemID: itemID, DisplayOrder: order}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed scenario item: %v", err)
	}
	return l
}

// Tree seeds one product with one item holding n subitems.
func Tree(tb testing.TB, ctx context.Context, tx *gorm.DB, n int) (*types.Product, *types.Item, []*types.Subitem) {
	tb.Helper()
	p := SeedProduct(tb, ctx, tx, "product")
	it := SeedItem(tb, ctx, tx, p.ID, "item")
	subs := make([]*types.Subitem, 0, n)
	for i := 0; i < n; i++ {
		subs = append(subs, SeedSubitem(tb, ctx, tx, it.ID, "subitem"))
	}
	return p, it, subs
}
