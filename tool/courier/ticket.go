package courier

import (
	"context"
	"net/http"

	"github.com/hupe1980/supportmesh/core"
)

// CreateSupportTicket is the name of the ticketing tool.
const CreateSupportTicket = "create_support_ticket"

// DefaultPackageID is sent when the customer has no package id at hand.
const DefaultPackageID = "N/A"

type ticketArgs struct {
	Email            string `json:"email" description:"Customer email address"`
	PhoneNo          string `json:"phoneNo" description:"Customer phone number"`
	IssueDescription string `json:"issueDescription" description:"Short description of the customer's problem"`
	PackageID        string `json:"packageId,omitempty" description:"Related package tracking id, if known"`
}

// TicketRequest is the payload sent to the ticketing backend.
type TicketRequest struct {
	Email            string `json:"email"`
	PhoneNo          string `json:"phoneNo"`
	IssueDescription string `json:"issueDescription"`
	PackageID        string `json:"packageId"`
}

// TicketAdapter opens a support ticket. Only 201 Created counts as success.
// Calls are not deduplicated: every successful call creates a new ticket.
type TicketAdapter struct {
	*httpAdapter
	endpoint string
}

// NewTicketAdapter creates a ticketing adapter posting to endpoint.
func NewTicketAdapter(endpoint string, optFns ...func(o *Options)) (*TicketAdapter, error) {
	base, err := newHTTPAdapter(
		CreateSupportTicket,
		"Create a customer support ticket. Requires the customer's email, phone number and a description of the issue.",
		ticketArgs{},
		acceptCreated,
		newOptions(optFns),
	)
	if err != nil {
		return nil, err
	}
	return &TicketAdapter{httpAdapter: base, endpoint: endpoint}, nil
}

// Call implements tool.Tool.
func (a *TicketAdapter) Call(ctx context.Context, args map[string]any) core.ToolResult {
	if res, ok := a.validate(args); !ok {
		return res
	}

	req := TicketRequest{
		Email:            stringArg(args, "email"),
		PhoneNo:          stringArg(args, "phoneNo"),
		IssueDescription: stringArg(args, "issueDescription"),
		PackageID:        stringArg(args, "packageId"),
	}
	if req.PackageID == "" {
		req.PackageID = DefaultPackageID
	}

	return a.do(ctx, http.MethodPost, a.endpoint, req)
}
