package leads

import (
	"html"
	"strconv"
	"strings"

	"geo-leads/internal/notify"
)

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(n/a)"
	}
	return html.EscapeString(s)
}

// Compose：通知邮件正文，用户输入均做 HTML 转义
func Compose(rc Receipt, in Input, cond *int, m Meta) notify.Message {
	c := "(n/a)"
	if cond != nil {
		c = strconv.Itoa(*cond)
	}
	lines := []string{
		"<strong>Name:</strong> " + orNA(in.Name),
		"<strong>Email:</strong> " + orNA(in.Email),
		"<strong>Address:</strong> " + html.EscapeString(in.Address),
		"<strong>Condition:</strong> " + c,
		"<strong>Timeline:</strong> " + orNA(in.Timeline),
		"<strong>Area:</strong> " + orNA(m.GeoSlug),
		"<strong>IP:</strong> " + orNA(m.IP),
		"<strong>User-Agent:</strong> " + orNA(m.UserAgent),
	}
	desc := strings.ReplaceAll(html.EscapeString(in.Description), "\n", "<br/>")
	var b strings.Builder
	b.WriteString("<h2>New Lead Submitted</h2>\n<p>")
	b.WriteString(strings.Join(lines, "<br/>"))
	b.WriteString("</p>\n<p><strong>Description:</strong></p>\n<p>")
	b.WriteString(desc)
	b.WriteString("</p>\n<hr/>\n<small>Lead ID: " + rc.ID + " • Ref: " + rc.Ref + " • Created: " + rc.CreatedAt + "</small>\n")
	return notify.Message{
		Subject: "New Lead #" + rc.ID + ": " + in.Address,
		HTML:    b.String(),
	}
}
