// 包 ipgeo：按访客 IP 解析城市/州（尽力而为，不持久化到客户端）
package ipgeo

import (
	"context"
	"errors"
)

// ErrNotFound：本地数据源未命中
var ErrNotFound = errors.New("ipgeo: not found")

// Place：数据源返回的原始地名
type Place struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

func (p Place) Empty() bool { return p.City == "" && p.Region == "" }

// Locator：IP 定位数据源
// 约束：ip 为空时由数据源自行决定（远端服务按请求来源推断，本地库直接未命中）
type Locator interface {
	Name() string
	Locate(ctx context.Context, ip string) (Place, error)
}
