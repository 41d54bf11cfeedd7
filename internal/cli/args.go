package cli

import (
	"fmt"
	"strconv"
)

// parseID parses a user or prize id argument.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid %s id %q", kind, s))
	}
	return id, nil
}
