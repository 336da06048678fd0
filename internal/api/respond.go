package api

import (
	"encoding/json"
	"net"
	"net/http"

	"geo-leads/internal/clientip"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// visitorIP：代理头优先，缺失时回退远端地址
func visitorIP(r *http.Request) string {
	if ip := clientip.FromHeaders(r.Header); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
