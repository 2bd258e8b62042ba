package rule

import (
	"encoding/json"
	"testing"
)

func fixtureRules() []DetectionRule {
	return []DetectionRule{
		{
			ResourceType: TypeEBSVolume,
			Description:  "Unattached EBS volumes",
			CurrentSettings: Settings{
				KeyEnabled:    BoolValue(true),
				KeyMinAgeDays: IntValue(7),
			},
			DefaultSettings: Settings{
				KeyEnabled:    BoolValue(true),
				KeyMinAgeDays: IntValue(7),
			},
		},
		{
			ResourceType: TypeEC2Stopped,
			Description:  "Long-stopped EC2 instances",
			CurrentSettings: Settings{
				KeyEnabled:        BoolValue(true),
				KeyMinStoppedDays: IntValue(14),
			},
			DefaultSettings: Settings{
				KeyEnabled:        BoolValue(true),
				KeyMinStoppedDays: IntValue(30),
			},
		},
	}
}

func TestApplyLocalEdit(t *testing.T) {
	tests := []struct {
		name         string
		resourceType string
		key          string
		value        SettingValue
		wantChanged  bool
	}{
		{
			name:         "edit existing rule",
			resourceType: TypeEBSVolume,
			key:          KeyMinAgeDays,
			value:        IntValue(0),
			wantChanged:  true,
		},
		{
			name:         "add new key",
			resourceType: TypeEBSVolume,
			key:          KeyConfidenceCriticalDays,
			value:        IntValue(60),
			wantChanged:  true,
		},
		{
			name:         "unknown resource type is a no-op",
			resourceType: "does_not_exist",
			key:          KeyMinAgeDays,
			value:        IntValue(1),
			wantChanged:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := fixtureRules()
			out := ApplyLocalEdit(rules, tt.resourceType, tt.key, tt.value)

			if !tt.wantChanged {
				if len(out) != len(rules) {
					t.Fatalf("ApplyLocalEdit() changed list length on no-op")
				}
				for i := range out {
					if !out[i].CurrentSettings.Equal(rules[i].CurrentSettings) {
						t.Errorf("ApplyLocalEdit() mutated rule %s on no-op", out[i].ResourceType)
					}
				}
				return
			}

			edited, ok := Find(out, tt.resourceType)
			if !ok {
				t.Fatalf("edited rule %s missing from result", tt.resourceType)
			}
			got, present := edited.CurrentSettings[tt.key]
			if !present || !got.Equal(tt.value) {
				t.Errorf("ApplyLocalEdit() = %v, want %v", got, tt.value)
			}

			// The input list must not be mutated.
			original, _ := Find(fixtureRules(), tt.resourceType)
			fresh, _ := Find(rules, tt.resourceType)
			if !fresh.CurrentSettings.Equal(original.CurrentSettings) {
				t.Error("ApplyLocalEdit() mutated its input list")
			}
		})
	}
}

func TestIsCustomized(t *testing.T) {
	rules := fixtureRules()

	if rules[0].IsCustomized() {
		t.Error("rule with identical settings reported as customized")
	}
	if !rules[1].IsCustomized() {
		t.Error("rule with edited min_stopped_days not reported as customized")
	}
}

func TestIsCustomized_KeyOrderIndependent(t *testing.T) {
	// Two maps with the same pairs built in different insertion order.
	a := make(Settings)
	a[KeyEnabled] = BoolValue(true)
	a[KeyMinAgeDays] = IntValue(7)
	a[KeyConfidenceHighDays] = IntValue(30)

	b := make(Settings)
	b[KeyConfidenceHighDays] = IntValue(30)
	b[KeyMinAgeDays] = IntValue(7)
	b[KeyEnabled] = BoolValue(true)

	r := DetectionRule{ResourceType: TypeEBSVolume, CurrentSettings: a, DefaultSettings: b}
	if r.IsCustomized() {
		t.Error("IsCustomized() = true for maps differing only in insertion order")
	}
}

func TestIsCustomized_KindMatters(t *testing.T) {
	r := DetectionRule{
		ResourceType:    TypeEBSVolume,
		CurrentSettings: Settings{KeyEnabled: IntValue(1)},
		DefaultSettings: Settings{KeyEnabled: BoolValue(true)},
	}
	if !r.IsCustomized() {
		t.Error("integer 1 and boolean true compared equal")
	}
}

func TestResetToDefault(t *testing.T) {
	r := fixtureRules()[1]
	reset := r.ResetToDefault()

	if reset.IsCustomized() {
		t.Error("IsCustomized() = true immediately after reset")
	}
	if days, _ := reset.CurrentSettings.Int(KeyMinStoppedDays); days != 30 {
		t.Errorf("reset min_stopped_days = %d, want 30", days)
	}

	// Idempotence.
	twice := reset.ResetToDefault()
	if !twice.CurrentSettings.Equal(reset.CurrentSettings) {
		t.Error("ResetToDefault() is not idempotent")
	}

	// The copy must not alias the defaults.
	reset.CurrentSettings[KeyMinStoppedDays] = IntValue(1)
	if days, _ := reset.DefaultSettings.Int(KeyMinStoppedDays); days != 30 {
		t.Error("editing reset settings leaked into defaults")
	}
}

func TestThresholdField(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantKey  string
		wantDays int
		wantOK   bool
	}{
		{
			name:     "min_age_days",
			settings: Settings{KeyMinAgeDays: IntValue(7)},
			wantKey:  KeyMinAgeDays,
			wantDays: 7,
			wantOK:   true,
		},
		{
			name:     "min_stopped_days",
			settings: Settings{KeyMinStoppedDays: IntValue(14)},
			wantKey:  KeyMinStoppedDays,
			wantDays: 14,
			wantOK:   true,
		},
		{
			name:     "min_idle_days",
			settings: Settings{KeyMinIdleDays: IntValue(3)},
			wantKey:  KeyMinIdleDays,
			wantDays: 3,
			wantOK:   true,
		},
		{
			name: "min_age_days wins when several present",
			settings: Settings{
				KeyMinIdleDays: IntValue(3),
				KeyMinAgeDays:  IntValue(7),
			},
			wantKey:  KeyMinAgeDays,
			wantDays: 7,
			wantOK:   true,
		},
		{
			name:     "no minimum-age concept",
			settings: Settings{KeyEnabled: BoolValue(true)},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DetectionRule{ResourceType: TypeEBSVolume, CurrentSettings: tt.settings}
			field, ok := r.ThresholdField()
			if ok != tt.wantOK {
				t.Fatalf("ThresholdField() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (field.Key != tt.wantKey || field.Days != tt.wantDays) {
				t.Errorf("ThresholdField() = %s/%d, want %s/%d", field.Key, field.Days, tt.wantKey, tt.wantDays)
			}
		})
	}
}

func TestCustomizeResetScenario(t *testing.T) {
	rules := []DetectionRule{{
		ResourceType:    TypeEBSVolume,
		CurrentSettings: Settings{KeyEnabled: BoolValue(true), KeyMinAgeDays: IntValue(0)},
		DefaultSettings: Settings{KeyEnabled: BoolValue(true), KeyMinAgeDays: IntValue(7)},
	}}

	r := rules[0]
	if !r.IsCustomized() {
		t.Fatal("edited ebs_volume rule not reported as customized")
	}

	reset := r.ResetToDefault()
	if days, _ := reset.CurrentSettings.Int(KeyMinAgeDays); days != 7 {
		t.Errorf("reset restored min_age_days = %d, want 7", days)
	}
	if reset.IsCustomized() {
		t.Error("rule still customized after reset")
	}
}

func TestSettingValueJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SettingValue
	}{
		{"boolean", `true`, BoolValue(true)},
		{"integer", `14`, IntValue(14)},
		{"string", `"gp3 only"`, StringValue("gp3 only")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v SettingValue
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
			}
			if !v.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.in, v, tt.want)
			}
		})
	}

	var v SettingValue
	if err := json.Unmarshal([]byte(`{"nested":1}`), &v); err == nil {
		t.Error("Unmarshal accepted a nested structure")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	in := Settings{
		KeyEnabled:    BoolValue(true),
		KeyMinAgeDays: IntValue(7),
		"note":        StringValue("tuned by ops"),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !in.Equal(out) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}
