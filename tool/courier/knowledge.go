package courier

import (
	"context"
	"net/http"

	"github.com/hupe1980/supportmesh/core"
)

// SearchKnowledgeBase is the name of the knowledge search tool.
const SearchKnowledgeBase = "search_knowledge_base"

type searchArgs struct {
	Query string `json:"query" description:"Customer question or topic, e.g. 'damaged packages'"`
}

// KnowledgeAdapter searches the company policy knowledge base.
type KnowledgeAdapter struct {
	*httpAdapter
	endpoint string
}

// NewKnowledgeAdapter creates a knowledge search adapter posting to endpoint.
func NewKnowledgeAdapter(endpoint string, optFns ...func(o *Options)) (*KnowledgeAdapter, error) {
	base, err := newHTTPAdapter(
		SearchKnowledgeBase,
		"Search company policies (delivery times, damaged or lost packages, shipping costs, returns, insurance and more).",
		searchArgs{},
		accept2xx,
		newOptions(optFns),
	)
	if err != nil {
		return nil, err
	}
	return &KnowledgeAdapter{httpAdapter: base, endpoint: endpoint}, nil
}

// Call implements tool.Tool.
func (a *KnowledgeAdapter) Call(ctx context.Context, args map[string]any) core.ToolResult {
	if res, ok := a.validate(args); !ok {
		return res
	}
	return a.do(ctx, http.MethodPost, a.endpoint, map[string]string{"query": stringArg(args, "query")})
}
