package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `shipdash reports confirmed ERP sales orders whose shipment is still pending.

Tools:
- list_pending_orders: decorated rows (elapsed time, business minutes, status), four per page, plus
  pending/local/exterior counts. Filters: status (on-time, moderate, delayed) and website.
- classify_order_time: timing view for a single timestamp, optionally measured against a given instant.
- get_recent_activity: log of ERP fetches, newest first.

Business time counts Monday to Friday, 08:00 to 15:00 at UTC-7. Under 120 business minutes is on time,
under 360 is moderate, anything longer is delayed.

Docs:
- shipdash://docs/business-hours
- shipdash://docs/statuses
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "shipdash://docs/business-hours",
		Name:        "docs_business_hours",
		Title:       "Business-hours clock",
		Description: "How elapsed business minutes are counted.",
		Content: `# Business-hours clock

All times are wall-clock UTC-7 (no daylight saving). An order timestamp that carries an offset keeps its
clock fields and the offset is ignored.

1. An order placed on Saturday or Sunday starts counting Monday 08:00.
2. An order placed on a weekday before 08:00 starts counting at 08:00 that day.
3. An order placed at or after 15:00 starts counting 08:00 the next day. If that day is a
   Saturday the weekend rule applies on top.
4. From that start, each minute up to now counts when it begins on a weekday between 08:00
   and 14:59.

An order in the future has zero business minutes.

Calendar elapsed time is reported separately as "N min", "N hrs" or "N días", always
rounded down.
`,
	},
	{
		URI:         "shipdash://docs/statuses",
		Name:        "docs_statuses",
		Title:       "Order statuses",
		Description: "Status bands and their dashboard labels.",
		Content: `# Order statuses

| Code     | Label     | Business minutes |
|----------|-----------|------------------|
| on-time  | En tiempo | 0 to 119         |
| moderate | Moderado  | 120 to 359       |
| delayed  | Retrasado | 360 and above    |

Rows whose date cannot be read show "N/D" and have no status; they are excluded by any
status filter.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
