package recorder

import (
	"context"

	"github.com/hazyhaar/locsynth/kit"
)

// SetOrderRequest reorders one scope.
type SetOrderRequest struct {
	Scope string   `json:"scope"`
	Order []string `json:"order"`
}

// SetOrderResult is the full order after the change.
type SetOrderResult struct {
	Scope string   `json:"scope"`
	Order []string `json:"order"`
}

// endpoints are the transport-neutral operations shared by HTTP and MCP.
type endpoints struct {
	locate     kit.Endpoint
	strategies kit.Endpoint
	setOrder   kit.Endpoint
}

func (r *Recorder) endpoints() endpoints {
	wrap := func(name string, e kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Logging(r.logger, name))(e)
	}
	return endpoints{
		locate: wrap("locate", func(ctx context.Context, req any) (any, error) {
			return r.Locate(ctx, *req.(*LocateRequest))
		}),
		strategies: wrap("strategies", func(context.Context, any) (any, error) {
			return r.Strategies(), nil
		}),
		setOrder: wrap("set_order", func(ctx context.Context, req any) (any, error) {
			in := req.(*SetOrderRequest)
			order, err := r.SetOrder(ctx, in.Scope, in.Order)
			if err != nil {
				return nil, err
			}
			scope, _ := normaliseScope(in.Scope)
			return &SetOrderResult{Scope: scope, Order: order}, nil
		}),
	}
}
