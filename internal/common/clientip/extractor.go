// Package clientip determines the address a request came from.
package clientip

import (
	"net"
	"strings"

	"github.com/valyala/fasthttp"
)

// Extract returns the client IP from the first configured header holding a
// usable value, falling back to RemoteAddr. X-Forwarded-For style lists
// yield their leftmost entry; a Forwarded (RFC 7239) header yields the
// first for= parameter.
func Extract(ctx *fasthttp.RequestCtx, headers []string) string {
	for _, header := range headers {
		value := strings.TrimSpace(string(ctx.Request.Header.Peek(header)))
		if value == "" {
			continue
		}
		if ip := parseHeaderValue(header, value); ip != "" {
			return ip
		}
	}
	return parseRemoteAddr(ctx.RemoteAddr().String())
}

func parseHeaderValue(header, value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		value = value[:idx]
	}
	if strings.EqualFold(header, "Forwarded") {
		value = forwardedFor(value)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return normalizeIP(value)
}

// forwardedFor extracts the for= node of one Forwarded element,
// e.g. `for="[2001:db8::1]:4711";proto=http` -> `[2001:db8::1]:4711`.
func forwardedFor(element string) string {
	for _, pair := range strings.Split(element, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || !strings.EqualFold(key, "for") {
			continue
		}
		val = strings.Trim(val, `"`)
		if host, _, err := net.SplitHostPort(val); err == nil {
			return host
		}
		return val
	}
	return ""
}

func parseRemoteAddr(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return normalizeIP(addr)
	}
	return normalizeIP(host)
}

func normalizeIP(raw string) string {
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if idx := strings.IndexByte(raw, '%'); idx >= 0 {
		raw = raw[:idx]
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return raw
	}
	return ip.String()
}
