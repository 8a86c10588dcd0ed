package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"quoted", `default_role_discount_factor: "0.25"`, "0.25"},
		{"number", `default_role_discount_factor: 0.7`, "0.7"},
		{"bounds", `default_role_discount_factor: 1`, "1"},
		{"missing key", `other: true`, "0.4"},
		{"empty file", ``, "0.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadProfile(writeFile(t, "profile.yaml", tt.content))
			if err != nil {
				t.Fatalf("LoadProfile: %v", err)
			}
			if got := p.DefaultRoleDiscountFactor().String(); got != tt.want {
				t.Errorf("nu = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoadProfileInvalid(t *testing.T) {
	for _, content := range []string{
		`default_role_discount_factor: 1.5`,
		`default_role_discount_factor: -0.1`,
		`default_role_discount_factor: lots`,
		`default_role_discount_factor: [0.4]`,
	} {
		_, err := LoadProfile(writeFile(t, "profile.yaml", content))
		if !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%q: error = %v, want ErrInvalidConfig", content, err)
		}
	}
}

func TestLoadKnowledgeBase(t *testing.T) {
	path := writeFile(t, "family.krss", `
; family
(define-primitive-role hasSon :parent hasChild)
(define-concept Parent (and Person (some hasChild Person)))
(define-primitive-concept Person)
`)

	kb, err := LoadKnowledgeBase(path)
	if err != nil {
		t.Fatalf("LoadKnowledgeBase: %v", err)
	}
	if def, ok := kb.FullDefinition("Parent"); !ok || def != "(and Person (some hasChild Person))" {
		t.Errorf("Parent = %q, %v", def, ok)
	}
	if got := kb.RoleParents()["hasSon"]; len(got) != 1 || got[0] != "hasChild" {
		t.Errorf("hasSon parents = %v", got)
	}
}

func TestLoadKnowledgeBaseSyntaxError(t *testing.T) {
	_, err := LoadKnowledgeBase(writeFile(t, "bad.krss", `(define-concept Parent (and Person`))
	if !errors.Is(err, internalerr.ErrSyntax) {
		t.Errorf("error = %v, want ErrSyntax", err)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	if _, err := LoadProfile("/nonexistent/profile.yaml"); err == nil {
		t.Error("Should error on non-existent file")
	}
	if _, err := LoadKnowledgeBase("/nonexistent/kb.krss"); err == nil {
		t.Error("Should error on non-existent file")
	}
}
