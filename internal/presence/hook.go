package presence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"geo-leads/internal/logger"
)

// FallbackLabel：城市未知时的展示文案
const FallbackLabel = "your area"

var ErrNoFetcher = errors.New("presence: no fetcher")

// Location：IP 解析得到的访客位置，字段可为空
type Location struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Slug  string `json:"slug,omitempty"`
}

// View：某一时刻的展示快照
type View struct {
	Status Status `json:"-"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Slug   string `json:"slug,omitempty"`
	Label  string `json:"label"`
}

// Label：有城市用城市，否则用兜底文案
func Label(city string) string {
	if city == "" {
		return FallbackLabel
	}
	return city
}

// Fetcher：一次 IP 位置查询
type Fetcher interface {
	Fetch(ctx context.Context) (Location, error)
}

// Hook：单个页面实例的位置状态
// 约束：只保留最新一次加载的结果；被新加载取代的旧请求完成后直接丢弃
type Hook struct {
	fetch   Fetcher
	mounted atomic.Bool

	mu     sync.Mutex
	status Status
	gen    uint64
	latest Location
}

func NewHook(f Fetcher) *Hook { return &Hook{fetch: f} }

// Mount：首次调用时触发加载，之后的调用只返回当前快照
func (h *Hook) Mount(ctx context.Context) View {
	if !h.mounted.CompareAndSwap(false, true) {
		return h.View()
	}
	return h.Reload(ctx)
}

// Reload：从当前状态重新开始加载，阻塞到本次加载结束
func (h *Hook) Reload(ctx context.Context) View {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.status = Transition(h.status, EventStart)
	h.mu.Unlock()

	var (
		loc Location
		err = ErrNoFetcher
	)
	if h.fetch != nil {
		loc, err = h.fetch.Fetch(ctx)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return h.viewLocked()
	}
	if err != nil {
		logger.L().Debug("presence_fetch_failed", "err", err)
		h.status = Transition(h.status, EventFail)
		return h.viewLocked()
	}
	h.latest = loc
	h.status = Transition(h.status, EventSucceed)
	return h.viewLocked()
}

// View：当前快照
func (h *Hook) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewLocked()
}

func (h *Hook) viewLocked() View {
	return View{
		Status: h.status,
		City:   h.latest.City,
		State:  h.latest.State,
		Slug:   h.latest.Slug,
		Label:  Label(h.latest.City),
	}
}
