// 包 outcome：位置解析结果的失败分类，供日志与测试区分，访客侧一律表现为“位置未知”
package outcome

// Kind：解析结果类别
type Kind int

const (
	// KindNone：解析成功
	KindNone Kind = iota
	// KindInvalidInput：坐标非法或缺少凭据，本地拒绝，未发起外部调用
	KindInvalidInput
	// KindUpstream：网络错误、超时或上游返回非成功状态
	KindUpstream
	// KindNoMatch：上游响应正常但不含可用城市/州
	KindNoMatch
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstream:
		return "upstream"
	case KindNoMatch:
		return "no_match"
	}
	return "unknown"
}

// StrPtr：空串转 nil，用于 JSON 输出 null
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref：nil 视为空串
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
