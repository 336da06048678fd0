package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSubmitter：POST {lat,lng} 到 {base}/geo
// 约束：Client 需携带 CookieJar 才能保存服务端返回的位置 Cookie；响应体只丢弃不解析
type HTTPSubmitter struct {
	Base   string
	Client *http.Client
}

func NewHTTPSubmitter(base string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSubmitter{Base: strings.TrimRight(base, "/"), Client: client}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, lat, lng float64) error {
	b, err := json.Marshal(map[string]float64{"lat": lat, "lng": lng})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Base+"/geo", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("geo submit status %d", resp.StatusCode)
	}
	return nil
}

// JarState：以 CookieJar 为后端的只读 geostate.Store，供非浏览器客户端判断是否已解析
type JarState struct {
	Jar http.CookieJar
	URL string
}

func (j JarState) Get(key string) (string, bool) {
	if j.Jar == nil {
		return "", false
	}
	u, err := url.Parse(j.URL)
	if err != nil {
		return "", false
	}
	for _, c := range j.Jar.Cookies(u) {
		if c.Name != key || c.Value == "" {
			continue
		}
		if v, err := url.PathUnescape(c.Value); err == nil {
			return v, true
		}
		return c.Value, true
	}
	return "", false
}

// Set：客户端不直接写位置状态，由服务端 Set-Cookie 负责
func (j JarState) Set(key, value string, ttl time.Duration) {}
