package cqrs

// ---------- User queries ----------

// GetCurrentUserQuery resolves the user behind a verified access token.
type GetCurrentUserQuery struct {
	Email string
}

// ---------- Address queries ----------

type ListAddressesQuery struct {
	UserID uint
}

type GetAddressQuery struct {
	AddressID uint
}

// ---------- Product queries ----------

// ListProductsQuery is a page request over the catalog. Zero values are
// replaced with defaults by the query service.
type ListProductsQuery struct {
	Search          string
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
	IncludeInactive bool
}

type GetProductQuery struct {
	ProductID uint
}
