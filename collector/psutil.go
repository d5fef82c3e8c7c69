package collector

import (
	"errors"
	"fmt"
	"io/fs"
)

// PsutilProvider reads host metrics through gopsutil.
type PsutilProvider struct{}

var _ Provider = (*PsutilProvider)(nil)

// NewPsutilProvider creates a new gopsutil-backed provider.
func NewPsutilProvider() *PsutilProvider {
	return &PsutilProvider{}
}

// classify maps OS-level failures onto the collector error taxonomy.
// A missing procfs/sysfs source means nothing can be read at all.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %v", op, ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w: %v", op, ErrProviderUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
