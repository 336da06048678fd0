// 包 presence：页面位置展示状态。挂载时触发一次 IP 解析，状态单向推进，标签始终可用
package presence

// Status：idle → loading → ready | error
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Event：驱动状态机的输入
type Event int

const (
	EventStart Event = iota
	EventSucceed
	EventFail
)

// Transition：纯函数，未定义的组合保持原状态
// 约束：start 可从任意状态重新进入 loading；succeed/fail 只在 loading 时生效
func Transition(s Status, e Event) Status {
	switch e {
	case EventStart:
		return StatusLoading
	case EventSucceed:
		if s == StatusLoading {
			return StatusReady
		}
	case EventFail:
		if s == StatusLoading {
			return StatusError
		}
	}
	return s
}
