package routes

import (
	"encoding/xml"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap：按 sitemaps.org 协议输出路由集合
// 约束：baseURL 末尾的 "/" 会被去除；lastMod 为零值时省略 lastmod
func Sitemap(baseURL string, rs []Route, lastMod time.Time) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	set := urlSet{NS: sitemapNS, URLs: make([]sitemapURL, 0, len(rs))}
	var lm string
	if !lastMod.IsZero() {
		lm = lastMod.UTC().Format("2006-01-02")
	}
	for _, r := range rs {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + r.Path(), LastMod: lm})
	}
	b, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}
