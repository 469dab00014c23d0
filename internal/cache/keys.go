package cache

const (
	// KeyMenuItems holds the full item list served to the storefront.
	KeyMenuItems = "catalog:items"
	// KeyCategories holds the ordered category list.
	KeyCategories = "catalog:categories"
	// KeySiteSettings holds the resolved site settings document.
	KeySiteSettings = "settings:site"
	// KeyPaymentMethods holds the active payment method list.
	KeyPaymentMethods = "payment:methods"
)

// CatalogKeys lists every key invalidated by a catalog write.
func CatalogKeys() []string {
	return []string{KeyMenuItems, KeyCategories}
}
