package backtrace

import (
	"strings"

	"github.com/cognicore/dlsim/pkg/dlsim/krss"
)

// MapConcepts replaces every unfolded definition occurring in description by
// the concept name it came from. Only whole names and whole sub-expressions
// are replaced, outermost first; role names are never touched. A description
// that does not parse is returned unchanged unless it matches as a whole.
func MapConcepts(description string, mapper map[string]string) string {
	if len(mapper) == 0 {
		return description
	}

	e, err := krss.Parse(description)
	if err != nil {
		if name, ok := mapper[strings.TrimSpace(description)]; ok {
			return name
		}
		return description
	}
	return mapExpr(e, mapper).String()
}

func mapExpr(e krss.Expr, mapper map[string]string) krss.Expr {
	if name, ok := mapper[e.String()]; ok && name != "" {
		return krss.Name{Value: name}
	}

	switch e := e.(type) {
	case krss.And:
		return krss.And{Args: mapAll(e.Args, mapper)}
	case krss.Some:
		return krss.Some{Role: e.Role, Filler: mapExpr(e.Filler, mapper)}
	case krss.List:
		return krss.List{Items: mapAll(e.Items, mapper)}
	}
	return e
}

func mapAll(exprs []krss.Expr, mapper map[string]string) []krss.Expr {
	out := make([]krss.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = mapExpr(e, mapper)
	}
	return out
}

// Existential renders an existential contribution as role(concept).
func Existential(role, concept string) string {
	return role + "(" + concept + ")"
}
