package domain

// UncategorizedID is the reserved id of the system "Default" category.
const UncategorizedID int64 = 0

// DefaultCategoryLabel is shown for the system category when it has no custom name.
const DefaultCategoryLabel = "Default"

// Category is a user-defined library grouping.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Order  int64  `json:"order"`
	Hidden bool   `json:"hidden"`
}

// IsSystem reports whether this is the built-in uncategorized category.
func (c Category) IsSystem() bool {
	return c.ID == UncategorizedID
}

// VisualName returns the name to display for the category.
func (c Category) VisualName() string {
	if c.IsSystem() && isBlank(c.Name) {
		return DefaultCategoryLabel
	}
	return c.Name
}

// CategoryUpdate is a partial category update; nil fields are left untouched.
type CategoryUpdate struct {
	ID     int64
	Name   *string
	Order  *int64
	Hidden *bool
}
