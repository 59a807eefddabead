package order

import (
	"strings"

	"github.com/ganot/shipdash/internal/domain/workclock"
	"github.com/ganot/shipdash/internal/odoo"
)

// The ERP encodes empty fields as false and many2one fields as [id, name].

func intField(rec odoo.Record, key string) (int64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func floatField(rec odoo.Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func stringField(rec odoo.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func many2one(rec odoo.Record, key string) (int64, string, bool) {
	pair, ok := rec[key].([]any)
	if !ok || len(pair) == 0 {
		return 0, "", false
	}
	id, ok := pair[0].(float64)
	if !ok {
		return 0, "", false
	}
	var name string
	if len(pair) > 1 {
		name, _ = pair[1].(string)
	}
	return int64(id), name, true
}

// project maps one sale.order row onto a SalesOrder.
func project(rec odoo.Record, cities map[int64]string, localCity string) SalesOrder {
	id, _ := intField(rec, "id")
	partnerID, partnerName, _ := many2one(rec, "partner_id")
	_, websiteName, _ := many2one(rec, "website_id")

	city, ok := cities[partnerID]
	delivery := DeliveryExterior
	if ok && strings.EqualFold(strings.TrimSpace(city), localCity) {
		delivery = DeliveryLocal
	}
	if !ok || city == "" {
		city = UnknownCity
	}

	return SalesOrder{
		ID:           stringField(rec, "name"),
		IDLink:       id,
		PartnerName:  partnerName,
		Subtotal:     floatField(rec, "amount_untaxed"),
		Total:        floatField(rec, "amount_total"),
		DateOrder:    workclock.DisplayRemote(stringField(rec, "date_order")),
		WebsiteName:  websiteName,
		DeliveryType: delivery,
		City:         city,
	}
}
