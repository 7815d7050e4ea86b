package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/fileset"
)

// Kind tags the variant of a Rule
type Kind int

const (
	// KindNames excludes literal names
	KindNames Kind = iota
	// KindWildcard excludes single-level wildcard matches
	KindWildcard
	// KindSubtree excludes whole directories at any depth
	KindSubtree
	// KindInvert keeps only matching candidates of a scope
	KindInvert
)

// String returns the configuration name of the kind
func (k Kind) String() string {
	switch k {
	case KindNames:
		return "names"
	case KindWildcard:
		return "wildcard"
	case KindSubtree:
		return "subtree"
	case KindInvert:
		return "invert"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule is one selection rule. Dir is relative to the source base. Patterns
// are relative to Dir. For KindInvert, Dir is also the scope whose files are
// excluded unless kept, and Match is the basename regex a candidate must
// match to be kept; an empty Match keeps every candidate.
type Rule struct {
	Kind     Kind
	Dir      string
	Patterns []string
	Match    string
}

// NamesRule builds a rule excluding literal names under dir
func NamesRule(dir string, names ...string) Rule {
	return Rule{Kind: KindNames, Dir: dir, Patterns: names}
}

// WildcardRule builds a rule excluding single-level wildcard matches under dir
func WildcardRule(dir string, patterns ...string) Rule {
	return Rule{Kind: KindWildcard, Dir: dir, Patterns: patterns}
}

// SubtreeRule builds a rule excluding the named subdirectories of dir
// entirely. A trailing recursive marker is optional.
func SubtreeRule(dir string, subdirs ...string) Rule {
	return Rule{Kind: KindSubtree, Dir: dir, Patterns: subdirs}
}

// InvertRule builds a keep-only rule over scope
func InvertRule(scope, match string, candidates ...string) Rule {
	return Rule{Kind: KindInvert, Dir: scope, Patterns: candidates, Match: match}
}

// String renders the rule for logs and error messages
func (r Rule) String() string {
	s := fmt.Sprintf("%s %s [%s]", r.Kind, r.Dir, strings.Join(r.Patterns, ", "))
	if r.Match != "" {
		s += " match " + r.Match
	}
	return s
}

// Validate checks that the rule can be evaluated
func (r Rule) Validate() error {
	switch r.Kind {
	case KindNames, KindWildcard, KindSubtree:
		if len(r.Patterns) == 0 {
			return errors.Newf(errors.ErrRuleInvalid, "%s rule for %q has no patterns", r.Kind, r.Dir)
		}
	case KindInvert:
		if r.Dir == "" || r.Dir == "." {
			return errors.New(errors.ErrRuleInvalid, "invert rule needs a scope below the source root")
		}
		if r.Match != "" {
			if _, err := compileMatch(r.Match); err != nil {
				return err
			}
		}
	default:
		return errors.Newf(errors.ErrRuleInvalid, "unknown rule kind %d", int(r.Kind))
	}

	if filepath.IsAbs(r.Dir) || strings.HasPrefix(filepath.Clean(r.Dir), "..") {
		return errors.Newf(errors.ErrRuleInvalid, "rule directory %q must stay inside the source root", r.Dir)
	}

	for _, p := range r.Patterns {
		if p == "" {
			return errors.Newf(errors.ErrRuleInvalid, "empty pattern in %s", r)
		}
		marker := strings.Index(p, fileset.RecursiveMarker)
		if marker >= 0 && marker != len(p)-len(fileset.RecursiveMarker) {
			return errors.Newf(errors.ErrRuleInvalid,
				"recursive marker is only allowed at the end of a pattern: %s", p)
		}
		if r.Kind == KindNames && strings.ContainsAny(p, wildcardChars) {
			return errors.Newf(errors.ErrRuleInvalid, "name %q contains wildcard characters", p)
		}
	}
	return nil
}

const wildcardChars = "*?[{"

// Classify splits a mixed pattern list into names, wildcard and subtree
// rules. Empty groups are omitted.
func Classify(dir string, patterns []string) []Rule {
	var names, wildcards, subtrees []string
	for _, p := range patterns {
		switch {
		case strings.HasSuffix(p, fileset.RecursiveMarker):
			subtrees = append(subtrees, p)
		case strings.ContainsAny(p, wildcardChars):
			wildcards = append(wildcards, p)
		default:
			names = append(names, p)
		}
	}

	var out []Rule
	if len(names) > 0 {
		out = append(out, NamesRule(dir, names...))
	}
	if len(wildcards) > 0 {
		out = append(out, WildcardRule(dir, wildcards...))
	}
	if len(subtrees) > 0 {
		out = append(out, SubtreeRule(dir, subtrees...))
	}
	return out
}

func compileMatch(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "invalid match expression %q", expr)
	}
	return re, nil
}

// matchesBasename reports whether re finds a non-empty match in the base
// name of path.
func matchesBasename(re *regexp2.Regexp, path string) bool {
	m, err := re.FindStringMatch(filepath.Base(path))
	return err == nil && m != nil && m.Length > 0
}
