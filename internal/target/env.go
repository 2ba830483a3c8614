package target

import "os"

// EnvVar is the default environment variable holding the override string.
const EnvVar = "KERNC_TARGET"

// LookupFunc reads an environment variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// FromEnvironment applies the override string stored in the variable name to
// base. When the variable is absent base is returned unchanged and applied is
// false; a present but empty variable is an (invalid) override.
func FromEnvironment(lookup LookupFunc, name string, base Target) (t Target, applied bool, err error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if name == "" {
		name = EnvVar
	}
	raw, ok := lookup(name)
	if !ok {
		return base, false, nil
	}
	t, err = ResolveOverride(raw, base)
	if err != nil {
		return base, false, err
	}
	return t, true, nil
}
