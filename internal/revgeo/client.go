// 包 revgeo：按坐标反查城市/州（Google Geocoding），结果写入访客短期状态供后续请求复用
package revgeo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
)

// DefaultEndpoint：Google Geocoding JSON 接口
const DefaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// DefaultTimeout：单次反查超时
const DefaultTimeout = 5 * time.Second

// ResultTypes：限定为城市级粒度的结果类型
var ResultTypes = []string{"locality", "postal_town", "administrative_area_level_3", "sublocality", "neighborhood"}

// ErrMissingKey：未配置 API 凭据
var ErrMissingKey = errors.New("revgeo: missing api key")

// 文档注释：Google 反查响应结构
// 背景：仅解析 status 与地址组件；results 顺序即服务方给出的具体程度顺序。
type Response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []Result `json:"results"`
}

type Result struct {
	AddressComponents []Component `json:"address_components"`
}

type Component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Geocoder：反查服务抽象
type Geocoder interface {
	Configured() bool
	Reverse(ctx context.Context, lat, lng float64) (*Response, error)
}

// Client：Google Geocoding REST 客户端
// 约束：单次请求、零重试；服务方慢或报错时直接返回，避免请求堆积
type Client struct {
	endpoint string
	key      string
	timeout  time.Duration
	client   *http.Client
}

// NewClient：endpoint 为空使用 DefaultEndpoint；timeout<=0 使用 DefaultTimeout
func NewClient(endpoint, key string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{endpoint: endpoint, key: key, timeout: timeout, client: &http.Client{Timeout: timeout}}
}

func (c *Client) Configured() bool { return c != nil && c.key != "" }

// Reverse：发起一次反查
// 返回：status 非 OK 时不返回错误，由上层判定；仅网络、HTTP 状态与解码失败返回 error
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Response, error) {
	if !c.Configured() {
		return nil, ErrMissingKey
	}
	q := url.Values{}
	q.Set("latlng", formatCoord(lat)+","+formatCoord(lng))
	q.Set("result_type", strings.Join(ResultTypes, "|"))
	q.Set("key", c.key)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	t0 := time.Now()
	metrics.RevGeoRequestsTotal.Inc()
	logger.L().Debug("revgeo_req", "lat", lat, "lng", lng)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("revgeo request: %w", err)
	}
	defer resp.Body.Close()
	metrics.RevGeoDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("revgeo http status %d", resp.StatusCode)
	}
	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("revgeo decode: %w", err)
	}
	logger.L().Debug("revgeo_resp", "status", r.Status, "results", len(r.Results), "duration_ms", time.Since(t0).Milliseconds())
	return &r, nil
}

func formatCoord(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
