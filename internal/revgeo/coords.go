package revgeo

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseCoordinate：请求体中的坐标字段转数值
// 约束：接受 JSON 数字与数字字符串；缺失、null、布尔或无法解析时返回 NaN，由解析器按非法输入拒绝
func ParseCoordinate(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		s = strings.TrimSpace(s)
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
