package plan

import "strings"

// Action is the structured form of a dotted action name such as "gmail.send".
type Action struct {
	Namespace string
	Verb      string
}

// ParseAction splits an action name at its first dot. A name without a dot
// is treated as a bare namespace.
func ParseAction(name string) Action {
	ns, verb, _ := strings.Cut(strings.TrimSpace(name), ".")
	return Action{Namespace: ns, Verb: verb}
}

// String rejoins the action into its dotted form.
func (a Action) String() string {
	if a.Verb == "" {
		return a.Namespace
	}
	return a.Namespace + "." + a.Verb
}

// Wildcard returns the "<namespace>.*" key matching every verb in the
// action's namespace, or "" for an empty namespace.
func (a Action) Wildcard() string {
	if a.Namespace == "" {
		return ""
	}
	return a.Namespace + ".*"
}
