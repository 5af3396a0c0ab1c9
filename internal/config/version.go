package config

import (
	"fmt"

	gv "github.com/hashicorp/go-version"
)

// CheckVersion reports whether current satisfies the required constraint.
// An empty constraint always passes.
func CheckVersion(required, current string) (bool, error) {
	if required == "" {
		return true, nil
	}
	c, err := gv.NewConstraint(required)
	if err != nil {
		return false, fmt.Errorf("required_version %q: %w", required, err)
	}
	v, err := gv.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("version %q: %w", current, err)
	}
	return c.Check(v), nil
}

// VersionWarning returns a message if current does not satisfy required,
// or "" if it does or the check cannot be made.
func VersionWarning(required, current string) string {
	ok, err := CheckVersion(required, current)
	if err != nil {
		return "Warning: unable to check version: " + err.Error()
	}
	if ok {
		return ""
	}
	return fmt.Sprintf("Warning: exprinput version %s does not satisfy required_version %q. Some features may be limited.", current, required)
}
