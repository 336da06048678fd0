// 包 routes：构建期枚举 (主题 × 城市) 全部页面路由，用于静态生成与站点地图
package routes

import (
	"geo-leads/internal/catalog"
)

// Route：一个主题/城市对
type Route struct {
	Topic string `json:"topic"`
	City  string `json:"city"`
}

// Path：渲染为页面路径 /{topic}/{city}
func (r Route) Path() string { return "/" + r.Topic + "/" + r.City }

// All：主题优先的笛卡尔积（主题 1 的所有城市，其后主题 2 ……）
// 约束：len == |topics| × |cities|，无重复；目录为空时返回空切片
func All(c *catalog.Catalog) []Route {
	topics := c.Topics()
	cities := c.AllCities()
	out := make([]Route, 0, len(topics)*len(cities))
	for _, t := range topics {
		for _, city := range cities {
			out = append(out, Route{Topic: string(t), City: city})
		}
	}
	return out
}

// Paths：路由列表转为路径列表，顺序不变
func Paths(rs []Route) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Path()
	}
	return out
}
