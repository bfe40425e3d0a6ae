package core

import "testing"

func TestGetPasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	if p := GetPasswordFromEnv(); p != nil {
		t.Errorf("Expected nil for empty env, got %q", p)
	}

	t.Setenv(PasswordEnv, "from-env")
	p := GetPasswordFromEnv()
	if string(p) != "from-env" {
		t.Errorf("Expected from-env, got %q", p)
	}

	// Clearing the returned copy must not affect later reads
	for i := range p {
		p[i] = 0
	}
	if string(GetPasswordFromEnv()) != "from-env" {
		t.Error("Env password should be unaffected by wiping a copy")
	}
}
