package rules

import (
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/fileset"
	"github.com/arthur-debert/kegpack/pkg/logging"
)

// Evaluator turns rules into path sets over one source tree
type Evaluator struct {
	enum    *fileset.Enumerator
	logger  zerolog.Logger
	regexes map[string]*regexp2.Regexp
}

// NewEvaluator creates an evaluator expanding patterns with enum
func NewEvaluator(enum *fileset.Enumerator) *Evaluator {
	if enum == nil {
		enum = fileset.NewEnumerator()
	}
	return &Evaluator{
		enum:    enum,
		logger:  logging.GetLogger("rules.evaluator"),
		regexes: make(map[string]*regexp2.Regexp),
	}
}

// AllFiles enumerates every file of the category directories under base
func (ev *Evaluator) AllFiles(base string, categories []string) fileset.Set {
	all := fileset.New()
	for _, category := range categories {
		files := ev.enum.EnumerateTree(filepath.Join(base, category))
		ev.logger.Debug().
			Str("category", category).
			Int("files", files.Len()).
			Msg("Enumerated category")
		all.Merge(files)
	}
	return all
}

// Resolve returns the paths one rule excludes
func (ev *Evaluator) Resolve(base string, rule Rule) (fileset.Set, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	dir := filepath.Join(base, rule.Dir)

	switch rule.Kind {
	case KindNames:
		return ev.resolveNames(dir, rule.Patterns), nil
	case KindWildcard:
		return ev.enum.ResolvePatterns(dir, rule.Patterns)
	case KindSubtree:
		patterns := make([]string, len(rule.Patterns))
		for i, p := range rule.Patterns {
			patterns[i] = withRecursiveMarker(p)
		}
		return ev.enum.ResolvePatterns(dir, patterns)
	case KindInvert:
		candidates := make([]string, len(rule.Patterns))
		for i, p := range rule.Patterns {
			candidates[i] = fileset.JoinPattern(rule.Dir, p)
		}
		return ev.Invert(base, rule.Dir, candidates, rule.Match)
	}

	return nil, errors.Newf(errors.ErrRuleInvalid, "unknown rule kind %d", int(rule.Kind))
}

// Excludes returns the union of the paths excluded by every rule
func (ev *Evaluator) Excludes(base string, rules []Rule) (fileset.Set, error) {
	excludes := fileset.New()
	for _, rule := range rules {
		matched, err := ev.Resolve(base, rule)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "failed to evaluate rule %s", rule)
		}
		ev.logger.Debug().
			Stringer("rule", rule).
			Int("excluded", matched.Len()).
			Msg("Evaluated rule")
		excludes.Merge(matched)
	}
	return excludes, nil
}

// Invert returns every file under base/subtree except the candidates whose
// basename matches match. Candidates are patterns relative to base. An empty
// match keeps every candidate; a match that keeps nothing excludes the whole
// subtree.
func (ev *Evaluator) Invert(base, subtree string, candidates []string, match string) (fileset.Set, error) {
	all := ev.enum.EnumerateTree(filepath.Join(base, subtree))

	keep, err := ev.enum.ResolvePatterns(base, candidates)
	if err != nil {
		return nil, err
	}

	if match != "" {
		re, err := ev.regex(match)
		if err != nil {
			return nil, err
		}
		keep = keep.Filter(func(p string) bool {
			return matchesBasename(re, p)
		})
	}

	ev.logger.Trace().
		Str("subtree", subtree).
		Int("files", all.Len()).
		Int("kept", keep.Len()).
		Msg("Inverted subtree")

	return all.Difference(keep), nil
}

func (ev *Evaluator) resolveNames(dir string, names []string) fileset.Set {
	out := fileset.New()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if ev.enum.Exists(path) {
			out.Add(path)
		}
	}
	return out
}

func (ev *Evaluator) regex(expr string) (*regexp2.Regexp, error) {
	if re, ok := ev.regexes[expr]; ok {
		return re, nil
	}
	re, err := compileMatch(expr)
	if err != nil {
		return nil, err
	}
	ev.regexes[expr] = re
	return re, nil
}

func withRecursiveMarker(p string) string {
	if strings.HasSuffix(p, fileset.RecursiveMarker) {
		return p
	}
	return strings.TrimSuffix(p, "/") + "/" + fileset.RecursiveMarker
}

// CopySet returns the files of all that no rule excluded
func CopySet(all, excludes fileset.Set) fileset.Set {
	return all.Difference(excludes)
}
