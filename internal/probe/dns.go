package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

var dnsTimeout = 3 * time.Second

// DiagnoseDNS resolves the host of a target URL and classifies the result.
// Class is one of "RESOLVES" | "NXDOMAIN" | "NO_A_RECORD" |
// "SERVFAIL_or_TIMEOUT" | "INVALID_NAME". Used to annotate connection-level
// probe errors in logs; never changes a probe outcome.
func DiagnoseDNS(target string) string {
	host := extractHost(target)
	if host == "" {
		return "INVALID_NAME"
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()
	r := &net.Resolver{} // OS resolver

	ips, err := r.LookupIP(ctx, "ip", host)
	if err == nil && len(ips) > 0 {
		return "RESOLVES"
	}

	class := "SERVFAIL_or_TIMEOUT"
	var de *net.DNSError
	if errors.As(err, &de) && de.IsNotFound {
		class = "NXDOMAIN"
	}

	// NS records but no address record means the zone exists.
	if ns, nsErr := r.LookupNS(ctx, host); nsErr == nil && len(ns) > 0 {
		return "NO_A_RECORD"
	}
	return class
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}
