package order

import (
	"time"

	"github.com/ganot/shipdash/internal/domain/workclock"
)

// Placeholder is shown instead of an elapsed time when an order date cannot be read.
const Placeholder = "N/D"

// Decorate attaches the elapsed time and work-schedule status at now to each
// order. Unreadable dates degrade to Placeholder with an empty status.
func Decorate(orders []SalesOrder, now time.Time) []DashboardRow {
	rows := make([]DashboardRow, 0, len(orders))
	for _, o := range orders {
		row := DashboardRow{SalesOrder: o}
		a, err := workclock.Assess(o.DateOrder, now)
		if err != nil {
			row.Elapsed = Placeholder
		} else {
			row.Elapsed = a.Elapsed
			row.BusinessMinutes = a.BusinessMinutes
			row.Status = a.Status
			row.StatusLabel = a.StatusLabel
		}
		rows = append(rows, row)
	}
	return rows
}

// Filter keeps rows matching status and website. Empty values match all.
func Filter(rows []DashboardRow, status workclock.Status, website string) []DashboardRow {
	out := make([]DashboardRow, 0, len(rows))
	for _, r := range rows {
		if status != "" && r.Status != status {
			continue
		}
		if website != "" && r.WebsiteName != website {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Paginate returns the 1-based page of rows. A page below 1 is treated as
// the first page; a page past the end has no rows.
func Paginate(rows []DashboardRow, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	total := len(rows)
	p := Page{
		Rows:       []DashboardRow{},
		Page:       page,
		PerPage:    perPage,
		TotalPages: pageCount(total, perPage),
		TotalRows:  total,
	}
	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * perPage
	end := start + min(perPage, total-start)
	p.Rows = rows[start:end]
	return p
}

func pageCount(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total-1)/perPage + 1
}

// Summarize counts orders by delivery type.
func Summarize(orders []SalesOrder) Summary {
	s := Summary{Pending: len(orders)}
	for _, o := range orders {
		if o.DeliveryType == DeliveryLocal {
			s.Local++
		} else {
			s.Exterior++
		}
	}
	return s
}
