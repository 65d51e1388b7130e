package domain

// Target represents a named unit of build work.
// It uses InternedString for fields that are frequently repeated to save memory.
type Target struct {
	Name           InternedString
	Dependencies   []InternedString
	InputPaths     []InternedString
	BuildCommands  []string
	ServiceCommand string
}

// HasInputs reports whether the target declares any input paths.
// A target without inputs is treated as always stale.
func (t *Target) HasInputs() bool {
	return len(t.InputPaths) > 0
}

// HasService reports whether the target declares a service command.
func (t *Target) HasService() bool {
	return t.ServiceCommand != ""
}
