package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/order"
	"github.com/ganot/shipdash/internal/domain/workclock"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listPendingOrdersInput struct {
	Status  string `json:"status,omitempty" jsonschema:"only orders in this status: on-time, moderate or delayed"`
	Website string `json:"website,omitempty" jsonschema:"only orders from this website name"`
	Page    int    `json:"page,omitempty" jsonschema:"1-based page number, defaults to 1"`
}

type classifyOrderTimeInput struct {
	DateOrder string `json:"date_order" jsonschema:"order timestamp as local UTC-7 wall-clock time, either DD/MM/YYYY, hh:mm:ss a.m. or ISO 8601; any offset is ignored"`
	Now       string `json:"now,omitempty" jsonschema:"RFC 3339 instant to measure against, defaults to the current time"`
}

type getRecentActivityInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum entries to return, defaults to 20"`
	Offset int    `json:"offset,omitempty" jsonschema:"entries to skip"`
	Type   string `json:"type,omitempty" jsonschema:"fetch_succeeded or fetch_failed"`
}

type classification struct {
	workclock.Assessment
	OrderTime string `json:"order_time"`
}

type activityList struct {
	Entries []activity.ActivityEntry `json:"entries"`
}

func registerTools(server *sdkmcp.Server, svc Services, now func() time.Time) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_pending_orders",
		Description: "List confirmed orders that still have a pending shipment, with elapsed time and work-schedule status. Four rows per page.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listPendingOrdersInput) (*sdkmcp.CallToolResult, any, error) {
		dash, err := svc.Orders.Dashboard(ctx, getTenantID(ctx), order.Query{
			Status:  workclock.Status(in.Status),
			Website: in.Website,
			Page:    in.Page,
		})
		if err != nil {
			return nil, nil, MapError(err)
		}
		return jsonResult(dash)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "classify_order_time",
		Description: "Compute calendar elapsed time, business minutes (Mon-Fri 08:00-15:00, UTC-7) and status for an order timestamp.",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, in classifyOrderTimeInput) (*sdkmcp.CallToolResult, any, error) {
		at := now()
		if in.Now != "" {
			parsed, err := time.Parse(time.RFC3339, in.Now)
			if err != nil {
				return nil, nil, &APIError{Code: "INVALID_TIMESTAMP", Message: fmt.Sprintf("now: %v", err), RecoveryHint: "Use RFC 3339"}
			}
			at = parsed
		}
		orderTime, err := workclock.ParseLocalTimestamp(in.DateOrder)
		if err != nil {
			return nil, nil, MapError(err)
		}
		assessment, err := workclock.Assess(in.DateOrder, at)
		if err != nil {
			return nil, nil, MapError(err)
		}
		return jsonResult(classification{
			Assessment: assessment,
			OrderTime:  workclock.FormatLocal(orderTime),
		})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent ERP fetches for the current tenant, newest first.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in getRecentActivityInput) (*sdkmcp.CallToolResult, any, error) {
		opts := activity.ListActivityOptions{Limit: in.Limit, Offset: in.Offset}
		if in.Type != "" {
			typ := activity.ActivityType(in.Type)
			opts.ActivityType = &typ
		}
		entries, err := svc.Activity.GetRecentActivity(ctx, getTenantID(ctx), opts)
		if err != nil {
			return nil, nil, MapError(err)
		}
		if entries == nil {
			entries = []activity.ActivityEntry{}
		}
		return jsonResult(activityList{Entries: entries})
	})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
