package models

// OrderLast is the sort sentinel for records without an ordering hint.
const OrderLast = 9999

// FallbackLabel replaces empty kind/category/org/subject values.
const FallbackLabel = "その他"

// UnsetAreaLabel buckets orgs whose metadata carries no area.
const UnsetAreaLabel = "エリア未設定"

// CatalogEntry is one row of the selectable exam catalog, as served by the
// upstream metadata endpoint. Entries are immutable once fetched.
type CatalogEntry struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Area     string `json:"area"`
	OrgName  string `json:"org_name"`

	KindOrder     *int `json:"kind_order,omitempty"`
	CategoryOrder *int `json:"category_order,omitempty"`
	AreaOrder     *int `json:"area_order,omitempty"`
	OrgOrder      *int `json:"org_order,omitempty"`
}

// OrderHint dereferences an optional ordering field, missing values sort last.
func OrderHint(v *int) int {
	if v == nil {
		return OrderLast
	}
	return *v
}
