// 包 geostate：访客已解析位置的短期持久化（键值 + TTL 抽象），默认实现为 Cookie
package geostate

import (
	"sync"
	"time"
)

const (
	KeyCity  = "geo_city"
	KeyState = "geo_state"
	KeySlug  = "geo_slug"
)

// DefaultTTL：位置状态有效期，约 7 天
const DefaultTTL = 7 * 24 * time.Hour

// Store：键值存储抽象，便于测试替换真实 HTTP 层
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

// Location：持久化的三元组，空串表示未知
type Location struct {
	City  string
	State string
	Slug  string
}

// Read：读取已持久化位置
// 返回：ok 仅在城市与州均非空时为 true，与客户端的“已解析”判定一致
func Read(st Store) (Location, bool) {
	var l Location
	if st == nil {
		return l, false
	}
	l.City, _ = st.Get(KeyCity)
	l.State, _ = st.Get(KeyState)
	l.Slug, _ = st.Get(KeySlug)
	return l, l.City != "" && l.State != ""
}

// Write：写入三元组；ttl<=0 时使用 DefaultTTL
func Write(st Store, l Location, ttl time.Duration) {
	if st == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	st.Set(KeyCity, l.City, ttl)
	st.Set(KeyState, l.State, ttl)
	st.Set(KeySlug, l.Slug, ttl)
}

// MemStore：进程内实现，按 TTL 过期；用于测试与无浏览器的客户端
type MemStore struct {
	mu  sync.Mutex
	m   map[string]memItem
	now func() time.Time
}

type memItem struct {
	v   string
	exp time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]memItem), now: time.Now}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.m[key]
	if !ok {
		return "", false
	}
	if !s.now().Before(it.exp) {
		delete(s.m, key)
		return "", false
	}
	return it.v, true
}

func (s *MemStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = memItem{v: value, exp: s.now().Add(ttl)}
}

// Len：当前未过期的键数量
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.m {
		if s.now().Before(it.exp) {
			n++
		}
	}
	return n
}
