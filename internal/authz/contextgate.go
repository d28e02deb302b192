package authz

import (
	"fmt"
	"net"
	"strings"
)

// SatisfiesContext checks the live request context against the capability's
// context restrictions. Every present restriction is a mandatory AND
// condition; the first failing one is returned as a structured rejection so
// the UI can tell the user what was missing.
func SatisfiesContext(cr *ContextRestrictions, ctx AccessContext) (bool, *Rejection) {
	if cr == nil {
		return true, nil
	}
	if cr.RequireMFA && !ctx.MFASatisfied {
		return false, &Rejection{Gate: GateContext, Message: "multi-factor authentication required"}
	}
	if cr.RequireApproval {
		if !ctx.ApprovalObtained {
			return false, &Rejection{Gate: GateContext, Message: "prior approval required"}
		}
		if len(cr.ApprovalFromRole) > 0 && !containsString(cr.ApprovalFromRole, ctx.ApproverRole) {
			return false, &Rejection{
				Gate:    GateContext,
				Message: fmt.Sprintf("approval must come from one of: %s", strings.Join(cr.ApprovalFromRole, ", ")),
			}
		}
	}
	if cr.RequireReason && strings.TrimSpace(ctx.ReasonProvided) == "" {
		return false, &Rejection{Gate: GateContext, Message: "a justification reason is required"}
	}
	if len(cr.IPWhitelist) > 0 && !ipWhitelisted(cr.IPWhitelist, ctx.ClientIP) {
		return false, &Rejection{Gate: GateContext, Message: "client address is not on the allowed network list"}
	}
	if len(cr.DeviceTypes) > 0 && !deviceAllowed(cr.DeviceTypes, ctx.DeviceType) {
		return false, &Rejection{Gate: GateContext, Message: fmt.Sprintf("device type %q is not permitted", ctx.DeviceType)}
	}
	return true, nil
}

// ipWhitelisted matches the client IP against literal IPs and CIDR blocks.
// An unparseable client IP never matches.
func ipWhitelisted(whitelist []string, clientIP string) bool {
	ip := net.ParseIP(strings.TrimSpace(clientIP))
	if ip == nil {
		return false
	}
	for _, entry := range whitelist {
		entry = strings.TrimSpace(entry)
		if _, cidr, err := net.ParseCIDR(entry); err == nil {
			if cidr.Contains(ip) {
				return true
			}
			continue
		}
		if literal := net.ParseIP(entry); literal != nil && literal.Equal(ip) {
			return true
		}
	}
	return false
}

func deviceAllowed(allowed []DeviceType, device DeviceType) bool {
	for _, d := range allowed {
		if d == device {
			return true
		}
	}
	return false
}
