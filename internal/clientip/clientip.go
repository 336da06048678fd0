// 包 clientip：从代理头部提取访问者 IP
package clientip

import (
	"net/http"
	"strings"
)

// 文档注释：头部检查顺序
// 背景：部署在 CDN/反向代理之后，源站 RemoteAddr 为代理地址；按顺序取第一个非空头部。
var headerOrder = []string{"x-forwarded-for", "x-real-ip", "cf-connecting-ip"}

// FromHeaders：返回最可能的客户端 IP，无法确定时返回空串
// 约束：逗号分隔的链式代理只取第一项；去除 IPv6 映射前缀 ::ffff:；此处不校验地址合法性（ipgeo 解析前校验），
// 头部可被伪造，仅用于个性化展示
func FromHeaders(h http.Header) string {
	var raw string
	for _, k := range headerOrder {
		if v := strings.TrimSpace(h.Get(k)); v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = raw[:i]
	}
	ip := strings.TrimSpace(raw)
	ip = strings.TrimPrefix(ip, "::ffff:")
	return ip
}
