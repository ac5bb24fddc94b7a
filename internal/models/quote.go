package models

// BreakdownLine is one displayed row of a quote's price decomposition.
type BreakdownLine struct {
	Kind        string   `json:"kind"` // base | adjustment | discount
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Rate        *float64 `json:"rate,omitempty"`
}

type Breakdown struct {
	Lines    []BreakdownLine `json:"lines"`
	Total    float64         `json:"total"`
	Currency string          `json:"currency"`
}

// Breakdown decomposes the quote into base, adjustments and discounts. Discounts always
// reduce the total whatever sign the server used for them.
func (q Quote) Breakdown() Breakdown {
	b := Breakdown{Currency: q.Currency}
	b.Lines = append(b.Lines, BreakdownLine{Kind: "base", Description: "Base rate", Amount: q.BaseRate})
	total := q.BaseRate
	for _, a := range q.Adjustments {
		b.Lines = append(b.Lines, BreakdownLine{Kind: "adjustment", Description: a.Description, Amount: a.Amount, Rate: a.Rate})
		total += a.Amount
	}
	for _, d := range q.Discounts {
		amt := d.Amount
		if amt > 0 {
			amt = -amt
		}
		b.Lines = append(b.Lines, BreakdownLine{Kind: "discount", Description: d.Description, Amount: amt, Rate: d.Rate})
		total += amt
	}
	b.Total = total
	return b
}
