package courier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hupe1980/supportmesh/core"
)

// TrackPackage is the name of the tracking tool.
const TrackPackage = "track_package"

type trackingArgs struct {
	PackageID string `json:"packageId" description:"Tracking id of the package, e.g. ABC123"`
}

// TrackingAdapter looks up the delivery status of a package.
//
// Two backend flavours exist: GET {url}?id={packageId} and POST {url} with
// {"packageId": ...} as body. Any 2xx response is a success.
type TrackingAdapter struct {
	*httpAdapter
	endpoint string
	method   string
}

// NewTrackingAdapter creates a tracking adapter for endpoint. method is
// http.MethodGet (default when empty) or http.MethodPost.
func NewTrackingAdapter(endpoint, method string, optFns ...func(o *Options)) (*TrackingAdapter, error) {
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("tracking: unsupported method %q", method)
	}
	base, err := newHTTPAdapter(
		TrackPackage,
		"Look up the current delivery status and location of a package by its tracking id.",
		trackingArgs{},
		accept2xx,
		newOptions(optFns),
	)
	if err != nil {
		return nil, err
	}
	return &TrackingAdapter{httpAdapter: base, endpoint: endpoint, method: method}, nil
}

// Call implements tool.Tool.
func (a *TrackingAdapter) Call(ctx context.Context, args map[string]any) core.ToolResult {
	if res, ok := a.validate(args); !ok {
		return res
	}
	id := stringArg(args, "packageId")

	if a.method == http.MethodPost {
		return a.do(ctx, http.MethodPost, a.endpoint, map[string]string{"packageId": id})
	}

	u, err := url.Parse(a.endpoint)
	if err != nil {
		return core.Failuref(core.ErrorKindUnexpected, "invalid tracking endpoint: %v", err)
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return a.do(ctx, http.MethodGet, u.String(), nil)
}
