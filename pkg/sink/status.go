package sink

// Lifecycle states past which schema-shaping inputs become immutable.
const (
	StatusConfiguring = 110
	StatusConfigured  = 130
)

// FrozenRule is the rule-string form of Frozen, for serialised views.
const FrozenRule = "status in [110, 130]"

// Frozen reports whether a sink in status can no longer change its
// destination schema.
func Frozen(status int) bool {
	return status == StatusConfiguring || status == StatusConfigured
}

// FrozenFieldRule is the rule-string form of FrozenField.
const FrozenFieldRule = "isEdit && " + FrozenRule

// FrozenField is the disabled gate shared by every schema-shaping form field:
// editing a sink that is configuring or configured.
func FrozenField(isEdit bool, status int) bool {
	return isEdit && Frozen(status)
}
