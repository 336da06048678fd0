// 包 slug：将任意地名文本归一化为站点使用的 slug 格式，用于比较与匹配
package slug

import (
	"strings"
	"unicode"
)

// Normalize：去除首尾空白、转小写，连续空白与连续连字符折叠为单个 "-"
// 约束：幂等，Normalize(Normalize(x)) == Normalize(x)；不做音译或去重音
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' {
			pending = true
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteRune(r)
	}
	// 首尾的连字符各折叠为一个，不做删除
	if pending {
		b.WriteByte('-')
	}
	return b.String()
}

// Title：slug 按 "-" 切分后各段首字母大写，以空格拼接
func Title(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		rs := []rune(p)
		rs[0] = unicode.ToUpper(rs[0])
		parts[i] = string(rs)
	}
	return strings.Join(parts, " ")
}
