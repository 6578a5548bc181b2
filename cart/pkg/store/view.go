package store

import (
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/product/pkg/currency"
)

// View renders the snapshot with a display breakdown per line. The totals
// stay the server figures; breakdowns are for display only.
func (s Snapshot) View() response.CartView {
	lines := make([]response.LineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		code := s.Currency
		if code == "" {
			code = l.Product.Currency
		}
		lines = append(lines, response.LineView{
			CartLine:  l,
			Breakdown: l.Breakdown(),
			Display:   currency.Format(l.FinalPrice, code),
		})
	}
	return response.CartView{
		Lines:    lines,
		Count:    s.Count,
		Total:    s.Total,
		Display:  currency.Format(s.Total, s.Currency),
		Currency: s.Currency,
		Status:   string(s.Status),
	}
}
