package config

import (
	"context"
	"fmt"

	"github.com/cognicore/dlsim/pkg/dlsim/krss"
	"github.com/cognicore/dlsim/pkg/dlsim/profile"
	"github.com/cognicore/dlsim/pkg/dlsim/roles"
	"github.com/cognicore/dlsim/pkg/dlsim/store"
	"github.com/cognicore/dlsim/pkg/dlsim/store/sqlite"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	KnowledgeBasePath string
	ProfilePath       string
	DBPath            string
}

// Components holds all loaded configuration components
type Components struct {
	KB      *krss.KnowledgeBase
	Roles   *roles.Hierarchy
	Profile profile.PreferenceProfile
	Store   store.Store // nil unless DBPath is set
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{}

	// Load knowledge base
	if l.KnowledgeBasePath != "" {
		kb, err := LoadKnowledgeBase(l.KnowledgeBasePath)
		if err != nil {
			return nil, fmt.Errorf("load knowledge base: %w", err)
		}
		comp.KB = kb
	} else {
		comp.KB = krss.NewKnowledgeBase()
	}
	comp.Roles = roles.FromParents(comp.KB.RoleParents())

	// Load preference profile
	if l.ProfilePath != "" {
		p, err := LoadProfile(l.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		comp.Profile = p
	} else {
		comp.Profile = profile.Default()
	}

	// Open run store last so nothing leaks on earlier errors
	if l.DBPath != "" {
		st, err := sqlite.OpenSQLite(ctx, l.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		comp.Store = st
	}

	return comp, nil
}
