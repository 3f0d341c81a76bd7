package logger

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{EnvLocal, EnvDev, EnvProd} {
		log, err := New(env)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", env, err)
		}
		if log == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
	}

	if _, err := New("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestSecret(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: "?"},
		{name: "short", value: "abc", want: "***"},
		{name: "exactly five", value: "abcde", want: "***"},
		{name: "long", value: "abcdefghij", want: "abcde***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Secret("api_key", tt.value)
			if f.Key != "api_key" {
				t.Errorf("key = %q, want api_key", f.Key)
			}
			if f.String != tt.want {
				t.Errorf("value = %q, want %q", f.String, tt.want)
			}
		})
	}
}
