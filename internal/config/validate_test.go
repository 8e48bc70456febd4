package config

import (
	"testing"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *Config
		wantFields []string
	}{
		{name: "defaults", cfg: Default()},
		{name: "nil", cfg: nil, wantFields: []string{}},
		{
			name:       "everything wrong",
			cfg:        &Config{Version: 0, LogFormat: "", SettingsFile: "s.ini"},
			wantFields: []string{"version", "log_format", "settings_file"},
		},
		{
			name:       "null byte",
			cfg:        &Config{Version: 1, LogFormat: "text", SettingsFile: "a\x00.yaml"},
			wantFields: []string{"settings_file"},
		},
		{
			name:       "snapshots off",
			cfg:        &Config{Version: 1, LogFormat: "json", BackupRetention: 0},
			wantFields: nil,
		},
		{
			name:       "negative retention",
			cfg:        &Config{Version: 1, LogFormat: "json", BackupRetention: -2},
			wantFields: []string{"backup_retention"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}

			var joined interface{ Unwrap() []error }
			if len(tt.wantFields) == 0 {
				return
			}
			if !errors.As(err, &joined) {
				t.Fatalf("Validate() error %T is not a joined error", err)
			}
			var got []string
			for _, e := range joined.Unwrap() {
				var fe *FieldError
				if errors.As(e, &fe) {
					got = append(got, fe.Field)
				}
			}
			if len(got) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", got, tt.wantFields)
			}
			for i := range got {
				if got[i] != tt.wantFields[i] {
					t.Errorf("fields[%d] = %q, want %q", i, got[i], tt.wantFields[i])
				}
			}
		})
	}
}
