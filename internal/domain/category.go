package domain

// Category is the closed set of spending categories a purchase can resolve to.
// The string values are display names and double as the wire representation.
type Category string

const (
	CategoryFood           Category = "Food & Dining"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryTravel         Category = "Travel"
	CategoryTransportation Category = "Transportation"
	CategoryUtilities      Category = "Utilities"
	CategoryHealth         Category = "Health & Medical"
	CategoryEducation      Category = "Education"
	CategoryPersonal       Category = "Personal Care"
	CategoryHome           Category = "Home"
	CategoryIncome         Category = "Income"
	CategoryOther          Category = "Other"
)

// Categories lists every category in declaration order. The order matters:
// the categorizer checks keyword blocks in this order and the first hit wins,
// so FOOD outranks SHOPPING for overlapping keywords. INCOME and OTHER come
// last and are never keyword-matched.
var Categories = []Category{
	CategoryFood,
	CategoryShopping,
	CategoryEntertainment,
	CategoryTravel,
	CategoryTransportation,
	CategoryUtilities,
	CategoryHealth,
	CategoryEducation,
	CategoryPersonal,
	CategoryHome,
	CategoryIncome,
	CategoryOther,
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
