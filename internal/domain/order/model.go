package order

import "github.com/ganot/shipdash/internal/domain/workclock"

// Delivery types shown on the dashboard.
const (
	DeliveryLocal    = "Envío local"
	DeliveryExterior = "Envío exterior"
)

// UnknownCity is shown when the customer has no city on file.
const UnknownCity = "N/A"

// SalesOrder is one confirmed order that still has a shipment pending.
type SalesOrder struct {
	ID           string  `json:"id"`
	IDLink       int64   `json:"id_link"`
	PartnerName  string  `json:"partner_name"`
	Subtotal     float64 `json:"subtotal"`
	Total        float64 `json:"total"`
	DateOrder    string  `json:"date_order"`
	WebsiteName  string  `json:"website_name"`
	DeliveryType string  `json:"delivery_type"`
	City         string  `json:"city"`
}

// DashboardRow is a SalesOrder with its timing view at a given instant.
type DashboardRow struct {
	SalesOrder
	Elapsed         string           `json:"elapsed"`
	BusinessMinutes int64            `json:"business_minutes"`
	Status          workclock.Status `json:"status"`
	StatusLabel     string           `json:"status_label"`
}

// Summary counts pending orders by delivery type.
type Summary struct {
	Pending  int `json:"pending"`
	Local    int `json:"local"`
	Exterior int `json:"exterior"`
}

// Page is one slice of dashboard rows.
type Page struct {
	Rows       []DashboardRow `json:"rows"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
	TotalRows  int            `json:"total_rows"`
}

// Dashboard is the complete view returned to callers.
type Dashboard struct {
	Page
	Summary  Summary  `json:"summary"`
	Websites []string `json:"websites"`
}
