package collector

import (
	"errors"
	"io/fs"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", fs.ErrPermission, ErrPermissionDenied},
		{"missing source", fs.ErrNotExist, ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", &fs.PathError{Op: "open", Path: "/proc/x", Err: tt.err})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	other := classify("op", errors.New("boom"))
	if errors.Is(other, ErrProviderUnavailable) || errors.Is(other, ErrPermissionDenied) {
		t.Errorf("Expected unclassified error, got %v", other)
	}
}
