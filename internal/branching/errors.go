package branching

import (
	"fmt"
	"strings"
)

// TopologyError reports a branch that shares no history with any of the
// branches it is expected to be created from.
type TopologyError struct {
	Branch  string
	Sources []string
}

func (e *TopologyError) Error() string {
	if len(e.Sources) == 0 {
		return fmt.Sprintf("branch %q has no source branches to inherit an increment from", e.Branch)
	}
	return fmt.Sprintf("no common ancestor between branch %q and its source branches %s",
		e.Branch, strings.Join(e.Sources, ", "))
}
