package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/yardguard/internal/authz"
)

const ContextAccessKey ctxKey = "access_context"

// Request headers carrying per-request trust signals. Approval and reason
// are asserted by the caller and audited; the gate only checks presence.
const (
	HeaderApprovalTicket = "X-Approval-Ticket"
	HeaderApproverRole   = "X-Approver-Role"
	HeaderAccessReason   = "X-Access-Reason"
	HeaderDeviceType     = "X-Device-Type"
)

// AccessContextFromContext returns the access context stashed by the auth
// middleware. The zero value fails every restricted gate, which is the
// safe direction.
func AccessContextFromContext(ctx context.Context) authz.AccessContext {
	if ac, ok := ctx.Value(ContextAccessKey).(authz.AccessContext); ok {
		return ac
	}
	return authz.AccessContext{}
}

// ContextBuilder derives the evaluator's access context from an HTTP
// request. TrustForwardedFor should only be set behind a proxy that
// strips the header from client traffic.
type ContextBuilder struct {
	TrustForwardedFor bool
}

// Build captures the request's trust signals once. Now is fixed here so
// every gate in one evaluation sees the same instant.
func (b ContextBuilder) Build(r *http.Request, claims *Claims) authz.AccessContext {
	ac := authz.AccessContext{
		Now:              time.Now(),
		ApprovalObtained: r.Header.Get(HeaderApprovalTicket) != "",
		ApproverRole:     r.Header.Get(HeaderApproverRole),
		ReasonProvided:   r.Header.Get(HeaderAccessReason),
		ClientIP:         b.clientIP(r),
		DeviceType:       deviceType(r),
	}
	if claims != nil {
		ac.MFASatisfied = claims.MFAVerified
	}
	return ac
}

func (b ContextBuilder) clientIP(r *http.Request) string {
	if b.TrustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			// first hop is the original client
			if i := strings.IndexByte(fwd, ','); i >= 0 {
				fwd = fwd[:i]
			}
			return strings.TrimSpace(fwd)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// deviceType classifies the client. An explicit X-Device-Type header wins
// when it names a known type; otherwise the user agent is sniffed.
func deviceType(r *http.Request) authz.DeviceType {
	if hinted, err := authz.ParseDeviceType(strings.ToLower(r.Header.Get(HeaderDeviceType))); err == nil {
		return hinted
	}

	ua := strings.ToLower(r.Header.Get("User-Agent"))
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return authz.DeviceTablet
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return authz.DeviceMobile
	default:
		return authz.DeviceDesktop
	}
}
