// 包 capture：访客端位置采集。已有缓存位置时跳过；否则请求设备定位并把原始坐标提交给服务端反查
package capture

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"geo-leads/internal/geostate"
	"geo-leads/internal/logger"
)

var (
	ErrUnsupported = errors.New("capture: geolocation unsupported")
	ErrDenied      = errors.New("capture: permission denied")
	ErrTimeout     = errors.New("capture: position timeout")
)

// Position：设备坐标
type Position struct {
	Lat float64
	Lng float64
	At  time.Time
}

// PositionOptions：定位请求参数
type PositionOptions struct {
	Timeout      time.Duration
	MaximumAge   time.Duration
	HighAccuracy bool
}

// DefaultOptions：8s 超时，接受 60s 内的设备缓存位置
var DefaultOptions = PositionOptions{Timeout: 8 * time.Second, MaximumAge: 60 * time.Second, HighAccuracy: true}

// Geolocator：运行环境提供的定位能力
type Geolocator interface {
	CurrentPosition(ctx context.Context, opt PositionOptions) (Position, error)
}

// Submitter：把坐标交给坐标解析端点
type Submitter interface {
	Submit(ctx context.Context, lat, lng float64) error
}

// Outcome：一次采集的结局，仅用于诊断；任何结局都不向访客展示错误
type Outcome int

const (
	OutcomeCached Outcome = iota
	OutcomeUnsupported
	OutcomeNoPosition
	OutcomeSubmitted
	OutcomeSubmitFailed
	OutcomeAlreadyRan
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCached:
		return "cached"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeNoPosition:
		return "no_position"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeSubmitFailed:
		return "submit_failed"
	case OutcomeAlreadyRan:
		return "already_ran"
	}
	return "unknown"
}

// Capture：每次页面加载构造一个，Run 只生效一次（unresolved → resolution-attempted）
type Capture struct {
	state     geostate.Store
	geo       Geolocator
	submit    Submitter
	opt       PositionOptions
	attempted atomic.Bool
}

func New(state geostate.Store, geo Geolocator, submit Submitter, opt PositionOptions) *Capture {
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultOptions.Timeout
	}
	return &Capture{state: state, geo: geo, submit: submit, opt: opt}
}

// Run：执行一次采集
// 约束：城市与州均已缓存时不做任何事；无定位能力、拒绝授权、超时或提交失败均静默返回
func (c *Capture) Run(ctx context.Context) Outcome {
	if !c.attempted.CompareAndSwap(false, true) {
		return OutcomeAlreadyRan
	}
	if _, ok := geostate.Read(c.state); ok {
		return OutcomeCached
	}
	if c.geo == nil {
		return OutcomeUnsupported
	}
	pctx, cancel := context.WithTimeout(ctx, c.opt.Timeout)
	pos, err := c.geo.CurrentPosition(pctx, c.opt)
	cancel()
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return OutcomeUnsupported
		}
		logger.L().Debug("capture_no_position", "err", err)
		return OutcomeNoPosition
	}
	if c.submit == nil {
		return OutcomeSubmitFailed
	}
	if err := c.submit.Submit(ctx, pos.Lat, pos.Lng); err != nil {
		logger.L().Debug("capture_submit_failed", "err", err)
		return OutcomeSubmitFailed
	}
	return OutcomeSubmitted
}

// Attempted：是否已执行过 Run
func (c *Capture) Attempted() bool { return c.attempted.Load() }
