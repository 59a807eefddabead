package odootest

import "time"

// ShopNow is a Tuesday, 14:00 at UTC-7. Against SeedShop data the three
// pending orders are moderate, delayed and on time, in that order.
var ShopNow = time.Date(2024, time.October, 15, 21, 0, 0, 0, time.UTC)

// SeedShop loads a small storefront: three pending orders out of six.
//
//	S00041  Pure Form          Tijuana    moderate at ShopNow
//	S00042  APX Energy         Monterrey  delayed
//	S00043  Limit-X Nutrition  no city    on time
//
// S00044 is a draft, S00045 belongs to an unlisted website and S00046 has
// already shipped.
func (s *Server) SeedShop() {
	s.SetRecords("website", []map[string]any{
		{"id": 1, "name": "Pure Form"},
		{"id": 2, "name": "Limit-X Nutrition"},
		{"id": 3, "name": "APX Energy"},
		{"id": 4, "name": "Other Store"},
	})
	s.SetRecords("res.partner", []map[string]any{
		{"id": 10, "name": "Ana López", "city": "Tijuana"},
		{"id": 11, "name": "Luis Pérez", "city": "Monterrey"},
		{"id": 12, "name": "Sin Ciudad", "city": false},
	})
	s.SetRecords("sale.order", []map[string]any{
		saleOrder(41, "S00041", 1, "Pure Form", 10, "Ana López", "2024-10-15 16:00:00", "sale", 100, 116),
		saleOrder(42, "S00042", 3, "APX Energy", 11, "Luis Pérez", "2024-10-14 15:30:00", "done", 250.5, 290.58),
		saleOrder(43, "S00043", 2, "Limit-X Nutrition", 12, "Sin Ciudad", "2024-10-15 20:00:00", "sale", 80, 92.8),
		saleOrder(44, "S00044", 1, "Pure Form", 10, "Ana López", "2024-10-15 17:00:00", "draft", 10, 11.6),
		saleOrder(45, "S00045", 4, "Other Store", 11, "Luis Pérez", "2024-10-15 17:00:00", "sale", 10, 11.6),
		saleOrder(46, "S00046", 1, "Pure Form", 11, "Luis Pérez", "2024-10-15 17:00:00", "sale", 10, 11.6),
	})
	s.SetRecords("stock.picking", []map[string]any{
		{"id": 141, "origin": "S00041", "state": "assigned"},
		{"id": 142, "origin": "S00042", "state": "confirmed"},
		{"id": 143, "origin": "S00043", "state": "waiting"},
		{"id": 144, "origin": "S00044", "state": "assigned"},
		{"id": 145, "origin": "S00045", "state": "assigned"},
		{"id": 146, "origin": "S00046", "state": "done"},
	})
}

func saleOrder(id int, name string, websiteID int, website string, partnerID int, partner, date, state string, untaxed, total float64) map[string]any {
	return map[string]any{
		"id":             id,
		"name":           name,
		"website_id":     []any{websiteID, website},
		"partner_id":     []any{partnerID, partner},
		"date_order":     date,
		"state":          state,
		"amount_untaxed": untaxed,
		"amount_total":   total,
		"picking_ids":    []any{100 + id},
	}
}
