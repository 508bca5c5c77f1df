package event

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// itemsKey is the collection key CloudTrail uses when it wraps a list in an object.
const itemsKey = "items"

// Discriminant extracts the routing pair of an event without validating it.
func Discriminant(raw RawEvent) (source, eventName string) {
	source = stringField(raw, "source")
	if detail, ok := raw["detail"].(map[string]any); ok {
		eventName = stringField(detail, "eventName")
	}
	return source, eventName
}

// Normalize builds the Envelope of a raw event.
// It fails with ErrMalformedEvent when detail, detail.requestParameters or
// detail.responseElements are missing. A JSON null for either parameter
// object is treated as empty.
func Normalize(raw RawEvent) (*Envelope, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty event", ErrMalformedEvent)
	}

	detailVal, ok := raw["detail"]
	if !ok {
		return nil, fmt.Errorf("%w: missing detail", ErrMalformedEvent)
	}
	detail, ok := detailVal.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: detail is %T, want object", ErrMalformedEvent, detailVal)
	}

	request, err := requiredObject(detail, "requestParameters")
	if err != nil {
		return nil, err
	}
	response, err := requiredObject(detail, "responseElements")
	if err != nil {
		return nil, err
	}

	region := stringField(raw, "region")
	if region == "" {
		region = stringField(detail, "awsRegion")
	}

	return &Envelope{
		ID:                stringField(raw, "id"),
		Source:            stringField(raw, "source"),
		DetailType:        stringField(raw, "detail-type"),
		Region:            region,
		EventName:         stringField(detail, "eventName"),
		RequestParameters: request,
		ResponseElements:  response,
	}, nil
}

func requiredObject(detail map[string]any, key string) (map[string]any, error) {
	val, ok := detail[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing detail.%s", ErrMalformedEvent, key)
	}
	if val == nil {
		return map[string]any{}, nil
	}
	obj, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: detail.%s is %T, want object", ErrMalformedEvent, key, val)
	}
	return obj, nil
}

// NormalizePermissionList resolves an ipPermissions field into permissions.
// A bare list and an object wrapping the list under "items" are both accepted.
// Any other shape yields no permissions and a diagnostic; it never fails.
func NormalizePermissionList(value any) ([]IngressPermission, []string) {
	elems, diag := resolveCollection("ipPermissions", value)
	if diag != "" {
		return []IngressPermission{}, []string{diag}
	}

	perms := make([]IngressPermission, 0, len(elems))
	var diags []string
	for i, elem := range elems {
		m, ok := elem.(map[string]any)
		if !ok {
			diags = append(diags, fmt.Sprintf("ipPermissions[%d]: unexpected %T", i, elem))
			continue
		}

		perm := IngressPermission{
			Protocol: strings.ToLower(stringField(m, "ipProtocol")),
			FromPort: intField(m, "fromPort"),
			ToPort:   intField(m, "toPort"),
		}

		v4, d := NormalizeCIDRList(m["ipRanges"], false)
		diags = append(diags, d...)
		v6, d := NormalizeCIDRList(m["ipv6Ranges"], true)
		diags = append(diags, d...)

		perm.SourceRanges = make([]CIDREntry, 0, len(v4)+len(v6))
		perm.SourceRanges = append(perm.SourceRanges, v4...)
		perm.SourceRanges = append(perm.SourceRanges, v6...)
		perms = append(perms, perm)
	}
	return perms, diags
}

// NormalizeCIDRList resolves an ipRanges (or ipv6Ranges when ipv6 is set)
// field into CIDR entries. It accepts a bare list, an object wrapping the list
// under "items", and a bare CIDR string.
func NormalizeCIDRList(value any, ipv6 bool) ([]CIDREntry, []string) {
	field, cidrKey := "ipRanges", "cidrIp"
	if ipv6 {
		field, cidrKey = "ipv6Ranges", "cidrIpv6"
	}

	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return []CIDREntry{}, nil
		}
		return []CIDREntry{{CIDR: s, IPv6: ipv6}}, nil
	}

	elems, diag := resolveCollection(field, value)
	if diag != "" {
		return []CIDREntry{}, []string{diag}
	}

	entries := make([]CIDREntry, 0, len(elems))
	var diags []string
	for i, elem := range elems {
		switch v := elem.(type) {
		case map[string]any:
			cidr := stringField(v, cidrKey)
			if cidr == "" {
				diags = append(diags, fmt.Sprintf("%s[%d]: missing %s", field, i, cidrKey))
				continue
			}
			entries = append(entries, CIDREntry{
				CIDR:        cidr,
				Description: stringField(v, "description"),
				IPv6:        ipv6,
			})
		case string:
			entries = append(entries, CIDREntry{CIDR: v, IPv6: ipv6})
		default:
			diags = append(diags, fmt.Sprintf("%s[%d]: unexpected %T", field, i, elem))
		}
	}
	return entries, diags
}

// resolveCollection returns the element list of a field that may be a bare
// list or an object holding the list under "items". Absent fields and empty
// wrapper objects resolve to an empty list without a diagnostic.
func resolveCollection(field string, value any) ([]any, string) {
	switch v := value.(type) {
	case nil:
		return nil, ""
	case []any:
		return v, ""
	case map[string]any:
		items, ok := v[itemsKey]
		if !ok {
			if len(v) == 0 {
				return nil, ""
			}
			return nil, fmt.Sprintf("%s: object without %q", field, itemsKey)
		}
		if items == nil {
			return nil, ""
		}
		list, ok := items.([]any)
		if !ok {
			return nil, fmt.Sprintf("%s.%s: unexpected %T", field, itemsKey, items)
		}
		return list, ""
	default:
		return nil, fmt.Sprintf("%s: unexpected %T", field, value)
	}
}

// SecurityGroupRef returns the group targeted by an ingress event.
func SecurityGroupRef(env *Envelope) GroupRef {
	id := stringField(env.RequestParameters, "groupId")
	if id == "" {
		id = stringField(env.RequestParameters, "securityGroupId")
	}
	return GroupRef{ID: id, Name: stringField(env.RequestParameters, "groupName")}
}

// Permissions returns the normalized ipPermissions of an ingress event.
func Permissions(env *Envelope) ([]IngressPermission, []string) {
	return NormalizePermissionList(env.RequestParameters["ipPermissions"])
}

// LaunchRecords returns the instances started by a RunInstances event.
// The AMI comes from the response item, or from the request instance
// specification when the response does not carry it.
func LaunchRecords(env *Envelope) ([]InstanceLaunchRecord, []string) {
	items, diag := resolveCollection("instancesSet", env.ResponseElements["instancesSet"])
	var diags []string
	if diag != "" {
		diags = append(diags, diag)
	}

	requestAMI := requestedAMI(env.RequestParameters)

	records := make([]InstanceLaunchRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			diags = append(diags, fmt.Sprintf("instancesSet[%d]: unexpected %T", i, item))
			continue
		}
		id := stringField(m, "instanceId")
		if id == "" {
			diags = append(diags, fmt.Sprintf("instancesSet[%d]: missing instanceId", i))
			continue
		}
		ami := firstNonEmpty(stringField(m, "imageId"), stringField(m, "ImageId"), requestAMI)
		records = append(records, InstanceLaunchRecord{InstanceID: id, AMIID: ami})
	}
	return records, diags
}

func requestedAMI(request map[string]any) string {
	if ami := stringField(request, "imageId"); ami != "" {
		return ami
	}
	items, _ := resolveCollection("instancesSet", request["instancesSet"])
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			if ami := stringField(m, "imageId"); ami != "" {
				return ami
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// intField reads a port number. Missing or unparsable values return -1.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return int(f)
		}
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return -1
}
