package enums

import "fmt"

// OptionCategory labels the three independent best-price rankings.
type OptionCategory string

const (
	CategoryBestCash    OptionCategory = "best_cash"
	CategoryBestMonthly OptionCategory = "best_monthly"
	CategoryBalanced    OptionCategory = "balanced"
)

// AllOptionCategories returns the categories in presentation order.
func AllOptionCategories() []OptionCategory {
	return []OptionCategory{CategoryBestCash, CategoryBestMonthly, CategoryBalanced}
}

// String implements fmt.Stringer.
func (c OptionCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known OptionCategory.
func (c OptionCategory) IsValid() bool {
	switch c {
	case CategoryBestCash, CategoryBestMonthly, CategoryBalanced:
		return true
	default:
		return false
	}
}

// ParseOptionCategory converts raw input into an OptionCategory.
func ParseOptionCategory(value string) (OptionCategory, error) {
	c := OptionCategory(value)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid option category %q", value)
	}
	return c, nil
}
