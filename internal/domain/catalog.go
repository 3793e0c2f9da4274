package domain

import "time"

// ProductStatus tracks the moderation state of a catalog entry.
type ProductStatus string

const (
	// ProductStatusActive marks products visible in the public catalog.
	ProductStatusActive ProductStatus = "active"
	// ProductStatusPending marks supplier submissions awaiting review.
	ProductStatusPending ProductStatus = "pending"
	// ProductStatusRejected marks supplier submissions declined by an admin.
	ProductStatusRejected ProductStatus = "rejected"
)

// Product is a catalog entry. Prices are canonical USD; display conversion
// happens at render time.
type Product struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Tribe            string        `json:"tribe"`
	Category         string        `json:"category"`
	PriceUSD         float64       `json:"price"`
	OriginalPriceUSD *float64      `json:"original_price,omitempty"`
	ImageURL         string        `json:"image,omitempty"`
	Description      string        `json:"description,omitempty"`
	Rating           float64       `json:"rating"`
	Reviews          int           `json:"reviews"`
	IsNew            bool          `json:"is_new"`
	Status           ProductStatus `json:"status"`
	SupplierID       string        `json:"supplier_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Tribes lists the communities whose crafts the marketplace carries, in
// display order.
func Tribes() []string {
	return []string{"Maasai", "Turkana", "Samburu", "Rendile", "Borana", "Somali"}
}

// Categories lists the catalog categories in display order.
func Categories() []string {
	return []string{"Jewelry", "Clothing", "Baskets", "Carvings", "Musical Instruments", "Home Décor"}
}
