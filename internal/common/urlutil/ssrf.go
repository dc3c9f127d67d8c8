package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// ErrPrivateAddress is wrapped by the checks below when an address falls in
// a private or reserved range.
var ErrPrivateAddress = errors.New("private/reserved address")

// privatePrefixes are refused when SSRF protection is on.
var privatePrefixes = []netip.Prefix{
	// IPv4
	netip.MustParsePrefix("127.0.0.0/8"),    // loopback
	netip.MustParsePrefix("10.0.0.0/8"),     // RFC 1918
	netip.MustParsePrefix("172.16.0.0/12"),  // RFC 1918
	netip.MustParsePrefix("192.168.0.0/16"), // RFC 1918
	netip.MustParsePrefix("169.254.0.0/16"), // link-local, cloud metadata
	netip.MustParsePrefix("100.64.0.0/10"),  // CGNAT (RFC 6598)
	netip.MustParsePrefix("0.0.0.0/8"),      // "this" network
	netip.MustParsePrefix("224.0.0.0/4"),    // multicast

	// IPv6
	netip.MustParsePrefix("::1/128"),   // loopback
	netip.MustParsePrefix("fe80::/10"), // link-local
	netip.MustParsePrefix("fc00::/7"),  // unique local
	netip.MustParsePrefix("ff00::/8"),  // multicast
}

// IsPrivateIP returns true if ip belongs to a private or reserved range.
// IPv4-mapped IPv6 addresses are checked as IPv4.
func IsPrivateIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	addr = addr.Unmap()

	for _, p := range privatePrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// CheckHostLiteral rejects a hostname that is a private IP literal.
// Domain names pass; CheckResolvedIP covers them after DNS resolution.
func CheckHostLiteral(hostname string) error {
	ip := net.ParseIP(hostname)
	if ip == nil {
		return nil
	}
	if IsPrivateIP(ip) {
		return fmt.Errorf("%w: host %s", ErrPrivateAddress, hostname)
	}
	return nil
}

// CheckResolvedIP rejects a resolved address in a private or reserved range.
func CheckResolvedIP(ip net.IP) error {
	if IsPrivateIP(ip) {
		return fmt.Errorf("%w: resolved %s", ErrPrivateAddress, ip)
	}
	return nil
}
