package config

// DefaultExportTypes is the set of resources the exports endpoint accepts.
var DefaultExportTypes = []string{
	"addresses",
	"authorizations",
	"bundles",
	"captures",
	"coupons",
	"customer_addresses",
	"customer_payment_sources",
	"customer_subscriptions",
	"customers",
	"gift_cards",
	"line_item_options",
	"line_items",
	"orders",
	"payment_methods",
	"price_tiers",
	"prices",
	"refunds",
	"returns",
	"shipments",
	"shipping_categories",
	"shipping_methods",
	"sku_list_items",
	"sku_lists",
	"sku_options",
	"skus",
	"stock_items",
	"stock_transfers",
	"tags",
	"tax_categories",
	"transactions",
	"voids",
}

// DefaultExportStatuses lists every status an export job can report.
var DefaultExportStatuses = []string{
	"pending",
	"in_progress",
	"interrupted",
	"completed",
}
