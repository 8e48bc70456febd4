package logging

import "testing"

func TestShouldMask(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"api_key", true},
		{"GITHUB_TOKEN", true},
		{"DbPassword", true},
		{"client_secret", true},
		{"Host", false},
		{"Port", false},
		{"RequestTimeout", false},
	}

	for _, tt := range tests {
		if got := ShouldMask(tt.key); got != tt.want {
			t.Errorf("ShouldMask(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "********"},
		{"abcd", "********"},
		{"abcde", "****bcde"},
	}

	for _, tt := range tests {
		if got := MaskValue(tt.in); got != tt.want {
			t.Errorf("MaskValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("Host", "localhost"); got != "localhost" {
		t.Errorf("Redact(Host) = %q, want unchanged", got)
	}
	if got := Redact("Host", "sk-live-abcdef"); got != "****cdef" {
		t.Errorf("Redact(token value) = %q, want masked", got)
	}
	if got := Redact("AuthHeader", "Bearer xyz1"); got != "****xyz1" {
		t.Errorf("Redact(AuthHeader) = %q, want masked", got)
	}
}
