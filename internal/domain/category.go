package domain

// Category groups transactions of a single type. Name is either user text or a
// localization key for the seeded defaults.
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  TransactionType `json:"type"`
	Icon  string          `json:"icon"`
	Color string          `json:"color"`
}

type CategoryDraft struct {
	Name  string
	Type  TransactionType
	Icon  string
	Color string
}

// CategoryPatch is a partial update; nil fields are left unchanged
type CategoryPatch struct {
	Name  *string
	Type  *TransactionType
	Icon  *string
	Color *string
}

// Apply shallow-merges the patch onto c and returns the result
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	return c
}

func (c Category) Draft() CategoryDraft {
	return CategoryDraft{Name: c.Name, Type: c.Type, Icon: c.Icon, Color: c.Color}
}

// DefaultExpenseCategories are seeded on first launch
var DefaultExpenseCategories = []Category{
	{ID: "1", Name: "Food", Type: TransactionTypeExpense, Icon: "🍔", Color: "#FF6B6B"},
	{ID: "2", Name: "Transport", Type: TransactionTypeExpense, Icon: "🚗", Color: "#4ECDC4"},
	{ID: "3", Name: "Entertainment", Type: TransactionTypeExpense, Icon: "🎬", Color: "#FFE66D"},
	{ID: "4", Name: "Shopping", Type: TransactionTypeExpense, Icon: "🛍️", Color: "#FF8B94"},
	{ID: "5", Name: "Utilities", Type: TransactionTypeExpense, Icon: "💡", Color: "#A8E6CF"},
	{ID: "6", Name: "Health", Type: TransactionTypeExpense, Icon: "⚕️", Color: "#FF6B9D"},
	{ID: "7", Name: "Education", Type: TransactionTypeExpense, Icon: "📚", Color: "#9B59B6"},
	{ID: "8", Name: "Other", Type: TransactionTypeExpense, Icon: "📌", Color: "#95A5A6"},
}

// DefaultIncomeCategories are seeded on first launch
var DefaultIncomeCategories = []Category{
	{ID: "101", Name: "Salary", Type: TransactionTypeIncome, Icon: "💰", Color: "#2ECC71"},
	{ID: "102", Name: "Bonus", Type: TransactionTypeIncome, Icon: "🎁", Color: "#27AE60"},
	{ID: "103", Name: "Investments", Type: TransactionTypeIncome, Icon: "📈", Color: "#3498DB"},
	{ID: "104", Name: "Freelance", Type: TransactionTypeIncome, Icon: "💻", Color: "#16A085"},
	{ID: "105", Name: "Gift", Type: TransactionTypeIncome, Icon: "🎉", Color: "#E74C3C"},
	{ID: "106", Name: "Other", Type: TransactionTypeIncome, Icon: "📌", Color: "#95A5A6"},
}

// DefaultCategories returns a fresh copy of the full seeded set, expense first
func DefaultCategories() []Category {
	out := make([]Category, 0, len(DefaultExpenseCategories)+len(DefaultIncomeCategories))
	out = append(out, DefaultExpenseCategories...)
	return append(out, DefaultIncomeCategories...)
}
