package builtin

// Persister writes one "alias"/"export" binding back to the rc file on
// disk. It is supplied by cmd/minish (which owns the config package) the
// same way Resumer is supplied for job control, keeping builtin free of
// a dependency on config.
type Persister func(kind, name, value string) error

var persister Persister

// ConfigurePersister installs the Persister hook used by the "--persist"
// flag (SPEC_FULL.md §4). Called once from cmd/minish's startup wiring.
func ConfigurePersister(p Persister) {
	persister = p
}

func persistIfEnabled(enabled bool, kind, name, value string) {
	if !enabled || persister == nil {
		return
	}
	_ = persister(kind, name, value)
}
