package humastar

import (
	"fmt"
	"strings"
)

// Action is a state-dependent hypermedia action link. Response bodies
// implement Actor to emit them as RFC 8288 Link headers with method and title
// extension parameters:
//
//	</api/v1/sessions/abc/markers/0>; rel="delete"; method="DELETE"; title="Remove marker"
type Action struct {
	Rel    string
	Href   string
	Method string
	Title  string
	Schema string // optional JSON Schema URL for the request body
}

// Actor is implemented by response bodies that provide state-dependent actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as a Link header value.
func (a Action) LinkHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		fmt.Fprintf(&b, `; method="%s"`, a.Method)
	}
	if a.Title != "" {
		fmt.Fprintf(&b, `; title="%s"`, a.Title)
	}
	if a.Schema != "" {
		fmt.Fprintf(&b, `; schema="%s"`, a.Schema)
	}
	return b.String()
}

// ActionDef is a reusable action template. Pattern is a fmt format whose
// verbs are filled from the arguments given to ActionsFor.
type ActionDef struct {
	Rel     string
	Pattern string // e.g. "/api/v1/sessions/%s/markers/%d"
	Method  string
	Title   string
	Schema  string
}

// ActionsFor expands defs for one resource.
func ActionsFor(defs []ActionDef, args ...any) []Action {
	actions := make([]Action, len(defs))
	for i, d := range defs {
		actions[i] = Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, args...),
			Method: d.Method,
			Title:  d.Title,
			Schema: d.Schema,
		}
	}
	return actions
}
