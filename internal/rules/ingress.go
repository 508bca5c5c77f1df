package rules

import (
	"strings"

	"autoremediator/internal/event"
)

const (
	// DefaultAdminPort is the SSH port
	DefaultAdminPort = 22

	// DefaultAdminProtocol is the transport the admin port is served on
	DefaultAdminProtocol = "tcp"

	// WildcardProtocol is the EC2 notation for every protocol
	WildcardProtocol = "-1"

	// AnyIPv4 is the source range matching every IPv4 address
	AnyIPv4 = "0.0.0.0/0"
)

// protocolNumbers maps IANA protocol numbers EC2 accepts in place of names.
var protocolNumbers = map[string]string{
	"6":  "tcp",
	"17": "udp",
	"1":  "icmp",
}

// IngressPolicy decides which ingress permissions expose the admin port to
// unrestricted sources.
type IngressPolicy struct {
	AdminPort         int
	AdminProtocol     string
	UnrestrictedCIDRs []string
}

// DefaultIngressPolicy flags SSH open to 0.0.0.0/0.
func DefaultIngressPolicy() IngressPolicy {
	return IngressPolicy{
		AdminPort:         DefaultAdminPort,
		AdminProtocol:     DefaultAdminProtocol,
		UnrestrictedCIDRs: []string{AnyIPv4},
	}
}

// Matches reports whether perm opens exactly the admin port, over the admin
// protocol or the wildcard protocol, to at least one unrestricted range.
func (p IngressPolicy) Matches(perm event.IngressPermission) bool {
	return len(p.OffendingRanges(perm)) > 0
}

// OffendingRanges returns the source ranges of perm that make it match.
// It returns nil when the port or protocol does not match.
func (p IngressPolicy) OffendingRanges(perm event.IngressPermission) []event.CIDREntry {
	if perm.FromPort != p.AdminPort || perm.ToPort != p.AdminPort {
		return nil
	}
	if !p.protocolMatches(perm.Protocol) {
		return nil
	}

	var offending []event.CIDREntry
	for _, r := range perm.SourceRanges {
		if p.isUnrestricted(r.CIDR) {
			offending = append(offending, r)
		}
	}
	return offending
}

func (p IngressPolicy) protocolMatches(protocol string) bool {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	if name, ok := protocolNumbers[protocol]; ok {
		protocol = name
	}
	return protocol == WildcardProtocol || protocol == strings.ToLower(p.AdminProtocol)
}

// isUnrestricted compares CIDRs verbatim; 10.0.0.0/0 is not 0.0.0.0/0.
func (p IngressPolicy) isUnrestricted(cidr string) bool {
	for _, c := range p.UnrestrictedCIDRs {
		if cidr == c {
			return true
		}
	}
	return false
}

// IsUnrestrictedAdminPortRule applies the default policy with the given admin port.
func IsUnrestrictedAdminPortRule(perm event.IngressPermission, adminPort int) bool {
	p := DefaultIngressPolicy()
	p.AdminPort = adminPort
	return p.Matches(perm)
}
