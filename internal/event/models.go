package event

// RawEvent is an audit event exactly as it was received.
type RawEvent map[string]any

// Envelope is the canonical view of a CloudTrail event delivered by EventBridge.
type Envelope struct {
	ID                string
	Source            string
	DetailType        string
	Region            string
	EventName         string
	RequestParameters map[string]any
	ResponseElements  map[string]any
}

// CIDREntry is one permitted source range of an ingress permission.
type CIDREntry struct {
	CIDR        string `json:"cidr"`
	Description string `json:"description,omitempty"`
	IPv6        bool   `json:"ipv6,omitempty"`
}

// IngressPermission is a normalized security group ingress permission.
// Ports are -1 when the event did not carry them.
type IngressPermission struct {
	Protocol     string      `json:"protocol"`
	FromPort     int         `json:"from_port"`
	ToPort       int         `json:"to_port"`
	SourceRanges []CIDREntry `json:"source_ranges"`
}

// InstanceLaunchRecord is one instance created by a RunInstances call.
type InstanceLaunchRecord struct {
	InstanceID string `json:"instance_id"`
	AMIID      string `json:"ami_id,omitempty"`
}

// GroupRef identifies the security group targeted by an ingress event.
// ID is preferred; Name is only set for events that carried nothing else.
type GroupRef struct {
	ID   string
	Name string
}

// String returns whichever identifier is set
func (g GroupRef) String() string {
	if g.ID != "" {
		return g.ID
	}
	return g.Name
}

// IsZero reports whether the reference carries no identifier
func (g GroupRef) IsZero() bool {
	return g.ID == "" && g.Name == ""
}
