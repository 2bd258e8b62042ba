package rule

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// DetectionRule is the per-resource-type configuration controlling how a
// resource type is flagged as orphaned. CurrentSettings is the active
// configuration, DefaultSettings the factory one; a rule is "customized"
// when the two differ. Resource types are a fixed enumeration owned by
// the backend; the client never creates or deletes rule records.
type DetectionRule struct {
	ResourceType    string   `json:"resource_type"`
	Description     string   `json:"description"`
	CurrentSettings Settings `json:"current_settings"`
	DefaultSettings Settings `json:"default_settings"`
}

// Resource types
const (
	TypeEBSVolume           = "ebs_volume"
	TypeElasticIP           = "elastic_ip"
	TypeEC2Stopped          = "ec2_stopped"
	TypeLoadBalancerIdle    = "load_balancer_idle"
	TypeSnapshotAged        = "snapshot_aged"
	TypeManagedDiskDetached = "managed_disk_unattached"
	TypePublicIPUnassigned  = "public_ip_unassigned"
	TypePDUnattached        = "persistent_disk_unattached"
)

// Setting keys recognized across resource-type variants. A given type
// carries exactly one of the min_* keys; ThresholdField resolves which.
const (
	KeyEnabled                 = "enabled"
	KeyMinAgeDays              = "min_age_days"
	KeyMinStoppedDays          = "min_stopped_days"
	KeyMinIdleDays             = "min_idle_days"
	KeyConfidenceThresholdDays = "confidence_threshold_days" // legacy single-threshold scheme
	KeyConfidenceCriticalDays  = "confidence_critical_days"
	KeyConfidenceHighDays      = "confidence_high_days"
	KeyConfidenceMediumDays    = "confidence_medium_days"
)

// Kind discriminates the primitive type of a SettingValue.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
)

// SettingValue is one of: boolean, integer (day-count threshold), or
// free-text string. No nested structures.
type SettingValue struct {
	Kind Kind
	Bool bool
	Int  int
	Str  string
}

// BoolValue returns a boolean setting value.
func BoolValue(v bool) SettingValue { return SettingValue{Kind: KindBool, Bool: v} }

// IntValue returns an integer setting value.
func IntValue(v int) SettingValue { return SettingValue{Kind: KindInt, Int: v} }

// StringValue returns a string setting value.
func StringValue(v string) SettingValue { return SettingValue{Kind: KindString, Str: v} }

// Equal reports whether two values have the same kind and payload.
// Kind is compared first so that e.g. the integer 1 and the boolean
// true never compare equal.
func (v SettingValue) Equal(o SettingValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	default:
		return v.Str == o.Str
	}
}

// String renders the value for display and for normalized serialization.
func (v SettingValue) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.Itoa(v.Int)
	default:
		return v.Str
	}
}

// MarshalJSON writes the underlying primitive.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(v.Bool)
	case KindInt:
		return json.Marshal(v.Int)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts a JSON boolean, number, or string. Numbers are
// day counts, so fractional input is truncated toward zero.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			*v = IntValue(int(i))
			return nil
		}
		if f, err := n.Float64(); err == nil {
			*v = IntValue(int(f))
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	return fmt.Errorf("setting value must be a boolean, integer, or string, got %s", string(data))
}

// Settings is an open key/value settings map. Order never carries
// meaning; all comparisons treat it as a set of pairs.
type Settings map[string]SettingValue

// Clone returns a copy that shares no storage with the receiver.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports structural equality independent of key order.
func (s Settings) Equal(o Settings) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys in lexical order, for stable rendering.
func (s Settings) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bool returns the boolean value for key, or def when the key is
// missing or holds a different kind.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key]; ok && v.Kind == KindBool {
		return v.Bool
	}
	return def
}

// Int returns the integer value for key and whether it was present
// with an integer kind.
func (s Settings) Int(key string) (int, bool) {
	if v, ok := s[key]; ok && v.Kind == KindInt {
		return v.Int, true
	}
	return 0, false
}

// Enabled reports whether detection is switched on for the rule.
func (r DetectionRule) Enabled() bool {
	return r.CurrentSettings.Bool(KeyEnabled, false)
}

// IsCustomized reports whether the active settings deviate from the
// factory defaults. Purely structural; no network round trip needed.
func (r DetectionRule) IsCustomized() bool {
	return !r.CurrentSettings.Equal(r.DefaultSettings)
}

// ResetToDefault returns a copy of the rule whose current settings are
// a fresh copy of the defaults, so later edits to one side never leak
// into the other.
func (r DetectionRule) ResetToDefault() DetectionRule {
	r.CurrentSettings = r.DefaultSettings.Clone()
	return r
}

// ThresholdField names the minimum-age setting a rule carries.
type ThresholdField struct {
	Key  string
	Days int
}

// thresholdKeyPriority is the resolution order for the minimum-age key.
var thresholdKeyPriority = []string{KeyMinAgeDays, KeyMinStoppedDays, KeyMinIdleDays}

// ThresholdField resolves which minimum-age key is present on the
// rule's current settings, in min_age/min_stopped/min_idle priority
// order. The second return is false when the resource type has no
// minimum-age concept at all.
func (r DetectionRule) ThresholdField() (ThresholdField, bool) {
	for _, key := range thresholdKeyPriority {
		if days, ok := r.CurrentSettings.Int(key); ok {
			return ThresholdField{Key: key, Days: days}, true
		}
	}
	return ThresholdField{}, false
}

// ApplyLocalEdit returns a new rule list where the rule matching
// resourceType has key set to value in its current settings; all other
// rules are carried over untouched. An unknown resourceType is a no-op
// returning the input list, never an error: the dashboard calls this
// optimistically while a refetch may still be in flight.
func ApplyLocalEdit(rules []DetectionRule, resourceType, key string, value SettingValue) []DetectionRule {
	idx := -1
	for i := range rules {
		if rules[i].ResourceType == resourceType {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rules
	}

	out := make([]DetectionRule, len(rules))
	copy(out, rules)
	edited := out[idx]
	edited.CurrentSettings = edited.CurrentSettings.Clone()
	if edited.CurrentSettings == nil {
		edited.CurrentSettings = make(Settings, 1)
	}
	edited.CurrentSettings[key] = value
	out[idx] = edited
	return out
}

// Find returns the rule for resourceType from the list.
func Find(rules []DetectionRule, resourceType string) (DetectionRule, bool) {
	for _, r := range rules {
		if r.ResourceType == resourceType {
			return r, true
		}
	}
	return DetectionRule{}, false
}
