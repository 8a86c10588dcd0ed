package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/krss"
	"github.com/cognicore/dlsim/pkg/dlsim/profile"
)

// Profile represents the preference profile configuration
type Profile struct {
	// DefaultRoleDiscountFactor is kept as text so that "0.4" and 0.4 both
	// reach the decimal parser unchanged.
	DefaultRoleDiscountFactor string `yaml:"default_role_discount_factor"`
}

// LoadProfile loads a preference profile from a YAML file.
// A file without a discount factor yields the default profile.
func LoadProfile(path string) (profile.PreferenceProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.PreferenceProfile{}, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return profile.PreferenceProfile{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	nu := strings.TrimSpace(p.DefaultRoleDiscountFactor)
	if nu == "" {
		return profile.Default(), nil
	}
	return profile.Parse(nu)
}

// LoadKnowledgeBase loads concept and role definitions from a KRSS file
func LoadKnowledgeBase(path string) (*krss.KnowledgeBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kb, err := krss.ParseKnowledgeBase(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}
