package model

import "strings"

// Category classifies a posting row (the account_category column).
type Category string

const (
	CategoryRevenue       Category = "Revenue"
	CategoryCOGS          Category = "COGS"
	CategoryOpexMarketing Category = "Opex:Marketing"
	CategoryOpexSales     Category = "Opex:Sales"
	CategoryOpexRD        Category = "Opex:R&D"
	CategoryOpexAdmin     Category = "Opex:Admin"
)

// opexPrefix marks operating-expense categories. Matching is by prefix so that
// new "Opex:*" sub-categories aggregate without a code change.
const opexPrefix = "Opex"

// Categories returns the fixed category enumeration in reporting order.
func Categories() []Category {
	return []Category{
		CategoryRevenue,
		CategoryCOGS,
		CategoryOpexMarketing,
		CategoryOpexSales,
		CategoryOpexRD,
		CategoryOpexAdmin,
	}
}

// IsOpex reports whether c is an operating-expense category.
func (c Category) IsOpex() bool {
	return strings.HasPrefix(string(c), opexPrefix)
}

// Known reports whether c belongs to the fixed enumeration.
func (c Category) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}
