package ipgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
)

// DefaultIPAPIEndpoint：ipapi.co 按 IP 查询的 JSON 接口根地址
const DefaultIPAPIEndpoint = "https://ipapi.co"

// 文档注释：ipapi.co 响应结构
// 背景：仅解析 city/region 与错误标记；其余字段不参与本站逻辑。
type ipapiResponse struct {
	City   string `json:"city"`
	Region string `json:"region"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// IPAPIClient：远端 IP 定位客户端
// 约束：单次请求，不重试；超时由 http.Client 与 ctx 共同约束
type IPAPIClient struct {
	endpoint string
	client   *http.Client
}

// NewIPAPIClient：endpoint 为空时使用 DefaultIPAPIEndpoint；client 为空时使用 3s 超时的默认客户端
func NewIPAPIClient(endpoint string, client *http.Client) *IPAPIClient {
	if endpoint == "" {
		endpoint = DefaultIPAPIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &IPAPIClient{endpoint: strings.TrimRight(endpoint, "/"), client: client}
}

func (c *IPAPIClient) Name() string { return "ipapi" }

// Locate：ip 为空时请求 /json/，由服务按请求来源推断（本地开发时返回服务器所在地）
func (c *IPAPIClient) Locate(ctx context.Context, ip string) (Place, error) {
	u := c.endpoint + "/json/"
	if ip != "" {
		u = c.endpoint + "/" + url.PathEscape(ip) + "/json/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("accept", "application/json")
	t0 := time.Now()
	metrics.IPGeoRequestsTotal.WithLabelValues(c.Name()).Inc()
	logger.L().Debug("ipapi_req", "ip", ip, "url", u)
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IPGeoFailTotal.WithLabelValues(c.Name()).Inc()
		return Place{}, fmt.Errorf("ipapi request: %w", err)
	}
	defer resp.Body.Close()
	metrics.IPGeoDurationMs.WithLabelValues(c.Name()).Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.IPGeoFailTotal.WithLabelValues(c.Name()).Inc()
		return Place{}, fmt.Errorf("ipapi status %d", resp.StatusCode)
	}
	var r ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		metrics.IPGeoFailTotal.WithLabelValues(c.Name()).Inc()
		return Place{}, fmt.Errorf("ipapi decode: %w", err)
	}
	if r.Error {
		metrics.IPGeoFailTotal.WithLabelValues(c.Name()).Inc()
		return Place{}, fmt.Errorf("ipapi error: %s", r.Reason)
	}
	logger.L().Debug("ipapi_resp", "ip", ip, "city", r.City, "region", r.Region)
	return Place{City: r.City, Region: r.Region}, nil
}
