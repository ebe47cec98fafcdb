package core

// CategorySpending is spending aggregated under one category name.
type CategorySpending struct {
	CategoryName string
	Total        Money
}

// SpendingReport aggregates expense totals per category over a date range,
// sorted by total descending.
type SpendingReport struct {
	Start      Date
	End        Date
	ByCategory []CategorySpending
}

// BudgetStatus pairs a budget with the amount spent in its current period
// window.
type BudgetStatus struct {
	Budget
	CategoryName string
	Spent        Money
}
