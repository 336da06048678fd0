package ipgeo

import (
	"context"
	"errors"
	"strings"
)

// Chain：按顺序查询数据源，首个带城市的结果生效
// 背景：本地库（mmdb/ip2region）在前，远端服务兜底；只有州/省的结果不截断后续数据源，
// 全部源都没有城市时返回最早的非空结果；所有源失败时返回最后一个非 ErrNotFound 错误。
type Chain struct {
	list []Locator
}

func NewChain(list ...Locator) *Chain {
	var ls []Locator
	for _, l := range list {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return &Chain{list: ls}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.list))
	for _, l := range c.list {
		names = append(names, l.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Locate(ctx context.Context, ip string) (Place, error) {
	lastErr := ErrNotFound
	var partial Place
	for _, l := range c.list {
		p, err := l.Locate(ctx, ip)
		if err == nil && p.City != "" {
			return p, nil
		}
		if err == nil && !p.Empty() && partial.Empty() {
			partial = p
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	if !partial.Empty() {
		return partial, nil
	}
	return Place{}, lastErr
}
