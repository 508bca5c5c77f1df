package rules

import (
	"errors"
	"sort"
	"strings"

	"autoremediator/internal/event"
)

// ErrEmptyAllowList is returned when no approved AMI is configured.
// Matching against an empty list would flag every launch.
var ErrEmptyAllowList = errors.New("approved AMI list is empty")

// AMIAllowList is the set of approved image ids.
type AMIAllowList map[string]struct{}

// NewAMIAllowList builds an allow-list, ignoring blank ids.
func NewAMIAllowList(ids ...string) AMIAllowList {
	allow := make(AMIAllowList, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			allow[id] = struct{}{}
		}
	}
	return allow
}

// ParseAMIAllowList splits a comma separated list such as the APPROVED_AMI_ID variable.
func ParseAMIAllowList(value string) AMIAllowList {
	return NewAMIAllowList(strings.Split(value, ",")...)
}

// Contains reports whether id is approved
func (a AMIAllowList) Contains(id string) bool {
	_, ok := a[id]
	return ok
}

// IDs returns the approved ids in sorted order
func (a AMIAllowList) IDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsUnapprovedAMI reports whether the record was launched from an image
// outside the allow-list. Records without an AMI never match.
func IsUnapprovedAMI(record event.InstanceLaunchRecord, allow AMIAllowList) (bool, error) {
	if len(allow) == 0 {
		return false, ErrEmptyAllowList
	}
	if record.AMIID == "" {
		return false, nil
	}
	return !allow.Contains(record.AMIID), nil
}
