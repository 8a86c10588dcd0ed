package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}
	if comp.KB == nil {
		t.Error("Should have knowledge base (empty)")
	}
	if comp.Roles == nil {
		t.Error("Should have role hierarchy (empty)")
	}
	if got := comp.Profile.DefaultRoleDiscountFactor().String(); got != "0.4" {
		t.Errorf("default nu = %s", got)
	}
	if comp.Store != nil {
		t.Error("Store should be nil without DBPath")
	}
}

func TestLoaderNonExistentKnowledgeBase(t *testing.T) {
	loader := Loader{KnowledgeBasePath: "/nonexistent/kb.krss"}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Error("Should error on nonexistent knowledge base")
	}
}

func TestLoaderNonExistentProfile(t *testing.T) {
	loader := Loader{ProfilePath: "/nonexistent/profile.yaml"}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Error("Should error on nonexistent profile")
	}
}

func TestLoaderValidFiles(t *testing.T) {
	kbPath := writeFile(t, "kb.krss", `
(define-primitive-role hasSon :parent hasChild)
(define-primitive-role hasChild :parent hasRelative)
(define-concept Father (and Man (some hasChild Person)))
`)
	profilePath := writeFile(t, "profile.yaml", "default_role_discount_factor: \"0.3\"\n")

	loader := Loader{
		KnowledgeBasePath: kbPath,
		ProfilePath:       profilePath,
		DBPath:            filepath.Join(t.TempDir(), "runs.db"),
	}
	comp, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer comp.Store.Close()

	if _, ok := comp.KB.FullDefinition("Father"); !ok {
		t.Error("Father should be defined")
	}
	want := []string{"hasChild", "hasRelative", "hasSon"}
	if diff := cmp.Diff(want, comp.Roles.UnfoldRoleHierarchy("hasSon")); diff != "" {
		t.Errorf("role closure mismatch (-want +got):\n%s", diff)
	}
	if got := comp.Profile.DefaultRoleDiscountFactor().String(); got != "0.3" {
		t.Errorf("nu = %s", got)
	}
	if comp.Store == nil {
		t.Fatal("Store should be opened when DBPath is set")
	}
	runs, err := comp.Store.ListRuns(context.Background(), 0)
	if err != nil || len(runs) != 0 {
		t.Errorf("fresh store: runs=%v err=%v", runs, err)
	}
}
