package sync

import (
	"fmt"
	"os"
)

// WriteCI appends the run outcome as key=value lines to path, the format CI
// systems consume from an output file (e.g. GITHUB_OUTPUT). A missing path
// is a no-op.
func (s Summary) WriteCI(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary file: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "run_id=%s\nsucceeded=%d\nskipped=%d\nfailed=%d\n",
		s.RunID, s.Succeeded, s.Skipped, s.Failed)
	if err != nil {
		return fmt.Errorf("writing summary file: %w", err)
	}
	return nil
}
