package geostate

import (
	"net/http"
	"net/url"
	"time"
)

// CookieStore：基于请求 Cookie 读、响应 Set-Cookie 写的 Store
// 约束：SameSite=Lax，不设置 HttpOnly（客户端脚本与服务端渲染都需读取）；Path 固定为 "/"；
// 同一请求内先写后读返回新值
type CookieStore struct {
	r       *http.Request
	w       http.ResponseWriter
	written map[string]string
	Secure  bool
}

func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{r: r, w: w, written: make(map[string]string)}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		return v, true
	}
	if s.r == nil {
		return "", false
	}
	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	v, err := url.PathUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return v, true
}

func (s *CookieStore) Set(key, value string, ttl time.Duration) {
	s.written[key] = value
	if s.w == nil {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.PathEscape(value),
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Secure,
	})
}
