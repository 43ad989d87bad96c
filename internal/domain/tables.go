package domain

var Tables = []interface{}{
	// Accounts
	&User{},
	&Address{},
	// Catalog
	&Category{},
	&Product{},
	&Review{},
	// Trade
	&Cart{},
	&CartItem{},
	&Order{},
	&OrderItem{},
}

// Resource types used as cache invalidation scopes.
const (
	ResProduct  = "product"
	ResCategory = "category"
	ResUser     = "user"
	ResAddress  = "address"
	ResCart     = "cart"
	ResOrder    = "order"
	ResReview   = "review"
)
