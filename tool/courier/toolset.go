package courier

import (
	"fmt"
	"slices"

	"github.com/hupe1980/supportmesh/tool"
)

// ToolsetConfig selects and configures the courier tools.
type ToolsetConfig struct {
	// Enabled lists tool names to register. Empty means all three.
	Enabled []string
	// TrackingURL is the package tracking endpoint.
	TrackingURL string
	// TrackingMethod is GET (default) or POST.
	TrackingMethod string
	// TicketURL is the ticket creation endpoint.
	TicketURL string
	// KnowledgeURL is the knowledge search endpoint.
	KnowledgeURL string
}

// Names returns all courier tool names in registration order.
func Names() []string {
	return []string{TrackPackage, CreateSupportTicket, SearchKnowledgeBase}
}

// NewToolset builds the enabled courier tools in a fixed order: tracking,
// ticketing, knowledge search. An unknown name in Enabled is an error.
func NewToolset(cfg ToolsetConfig, optFns ...func(o *Options)) ([]tool.Tool, error) {
	enabled := cfg.Enabled
	if len(enabled) == 0 {
		enabled = Names()
	}
	for _, name := range enabled {
		if !slices.Contains(Names(), name) {
			return nil, fmt.Errorf("courier: unknown tool %q", name)
		}
	}

	var tools []tool.Tool

	if slices.Contains(enabled, TrackPackage) {
		t, err := NewTrackingAdapter(cfg.TrackingURL, cfg.TrackingMethod, optFns...)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}

	if slices.Contains(enabled, CreateSupportTicket) {
		t, err := NewTicketAdapter(cfg.TicketURL, optFns...)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}

	if slices.Contains(enabled, SearchKnowledgeBase) {
		t, err := NewKnowledgeAdapter(cfg.KnowledgeURL, optFns...)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}

	return tools, nil
}
