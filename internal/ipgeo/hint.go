package ipgeo

import "context"

type hintKey struct{}

// WithEdgeHint：把 CDN 边缘节点提供的地理信息放入请求上下文
func WithEdgeHint(ctx context.Context, p Place) context.Context {
	if p.Empty() {
		return ctx
	}
	return context.WithValue(ctx, hintKey{}, p)
}

// EdgeHint：读取边缘地理信息
func EdgeHint(ctx context.Context) (Place, bool) {
	p, ok := ctx.Value(hintKey{}).(Place)
	return p, ok && p.City != ""
}
