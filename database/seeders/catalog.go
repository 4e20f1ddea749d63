package seeders

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

func init() {
	Register("catalog", SeedCatalog)
}

var demoProducts = []models.Product{
	{Name: "accent chair", Price: 259.99, Category: "office", Company: "marcos", Colors: []string{"#ff0000", "#00ff00"}, Featured: true,
		Description: "Cloud bread VHS hell of banjo bicycle rights jianbing umami mumblecore."},
	{Name: "albany sectional", Price: 109.99, Category: "kitchen", Company: "liddy", Colors: []string{"#000", "#ffb900"},
		Description: "Lo-fi listicle semiotics, single-origin coffee forage tilde."},
	{Name: "armchair", Price: 125.99, Category: "bedroom", Company: "marcos", Colors: []string{"#000", "#00ff00"}, FreeShipping: true,
		Description: "Plaid biodiesel neutra sriracha, cold-pressed portland gochujang."},
	{Name: "emperor bed", Price: 234.99, Category: "bedroom", Company: "ikea", Colors: []string{"#0000ff"}, Featured: true,
		Description: "Scenester umami tousled, poke kinfolk copper mug selvage."},
	{Name: "high-back bench", Price: 39.99, Category: "office", Company: "ikea", Colors: []string{"#000"},
		Description: "Hammock drinking vinegar blog, shabby chic raclette seitan."},
	{Name: "wooden table", Price: 234.99, Category: "kitchen", Company: "liddy", Colors: []string{"#ffb900"}, FreeShipping: true,
		Description: "Tacos vinyl before they sold out, tumeric pinterest chia."},
}

// SeedCatalog inserts the demo products when the catalog is empty.
func SeedCatalog(ctx context.Context, store *repositories.Store) error {
	existing, err := store.Products.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range demoProducts {
		p := p
		p.Colors = append([]string(nil), p.Colors...)
		p.Image = models.DefaultProductImage
		p.Inventory = models.DefaultInventory
		if err := store.Products.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
