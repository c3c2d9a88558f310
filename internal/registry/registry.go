package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoMetrics          = errors.New("registry has no metrics")
	ErrEmptyExpression    = errors.New("metric has no source expression")
	ErrDuplicateWidgetID  = errors.New("duplicate widget id")
	ErrEmptyCategory      = errors.New("category has no metrics")
	ErrUnknownCategory    = errors.New("metric references undeclared category")
	ErrDuplicateCategory  = errors.New("duplicate category")
	ErrUnknownFormatter   = errors.New("unknown formatter kind")
	ErrUnknownEmptyPolicy = errors.New("unknown empty category policy")
)

// EmptyCategoryPolicy decides what happens to a declared category that no
// metric references.
type EmptyCategoryPolicy string

const (
	// EmptyCategoriesReject fails registry construction.
	EmptyCategoriesReject EmptyCategoryPolicy = "reject"
	// EmptyCategoriesRender keeps the category as an empty section.
	EmptyCategoriesRender EmptyCategoryPolicy = "render"
	// EmptyCategoriesHide drops the section from the layout.
	EmptyCategoriesHide EmptyCategoryPolicy = "hide"
)

// ParseEmptyCategoryPolicy maps a configuration string onto a policy.
func ParseEmptyCategoryPolicy(s string) (EmptyCategoryPolicy, error) {
	switch p := EmptyCategoryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case EmptyCategoriesReject, EmptyCategoriesRender, EmptyCategoriesHide:
		return p, nil
	case "":
		return EmptyCategoriesReject, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: reject, render, hide)", ErrUnknownEmptyPolicy, s)
	}
}

// DefaultHeaderCategory holds metrics shown above the section grid.
const DefaultHeaderCategory = "Meta"

// Registry is the fixed, ordered list of displayable metrics. It is built
// once at startup and never mutated afterwards.
type Registry struct {
	categories     []string
	metrics        []Descriptor
	index          map[string]int
	emptyPolicy    EmptyCategoryPolicy
	headerCategory string
}

// Option configures registry construction.
type Option func(*Registry)

// WithEmptyCategories sets how declared categories without metrics are treated.
func WithEmptyCategories(p EmptyCategoryPolicy) Option {
	return func(r *Registry) { r.emptyPolicy = p }
}

// WithHeaderCategory names the category whose metrics render above the sections.
func WithHeaderCategory(name string) Option {
	return func(r *Registry) { r.headerCategory = name }
}

// New validates the metric list against the category list and returns an
// immutable registry. All problems found are joined into the returned error.
func New(categories []string, metrics []Descriptor, opts ...Option) (*Registry, error) {
	r := &Registry{
		categories:     append([]string(nil), categories...),
		metrics:        make([]Descriptor, len(metrics)),
		index:          make(map[string]int, len(metrics)),
		emptyPolicy:    EmptyCategoriesReject,
		headerCategory: DefaultHeaderCategory,
	}
	for _, opt := range opts {
		opt(r)
	}
	for i, m := range metrics {
		if m.WidgetID == "" {
			m.WidgetID = DeriveWidgetID(m.Expression)
		}
		r.metrics[i] = m
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for static configuration; a failure is a startup bug.
func MustNew(categories []string, metrics []Descriptor, opts ...Option) *Registry {
	r, err := New(categories, metrics, opts...)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return r
}

func (r *Registry) validate() error {
	var errs []error

	switch r.emptyPolicy {
	case EmptyCategoriesReject, EmptyCategoriesRender, EmptyCategoriesHide:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownEmptyPolicy, r.emptyPolicy))
	}
	if len(r.metrics) == 0 {
		errs = append(errs, ErrNoMetrics)
	}

	declared := make(map[string]bool, len(r.categories))
	for _, c := range r.categories {
		if declared[c] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateCategory, c))
		}
		declared[c] = true
	}

	used := make(map[string]bool, len(r.categories))
	for i, m := range r.metrics {
		if strings.TrimSpace(m.Expression) == "" {
			errs = append(errs, fmt.Errorf("%w: metric #%d (%q)", ErrEmptyExpression, i, m.Label))
		}
		if prev, ok := r.index[m.WidgetID]; ok {
			errs = append(errs, fmt.Errorf("%w: %q used by metric #%d and #%d", ErrDuplicateWidgetID, m.WidgetID, prev, i))
		} else {
			r.index[m.WidgetID] = i
		}
		if !m.Formatter.valid() {
			errs = append(errs, fmt.Errorf("%w: %d on %q", ErrUnknownFormatter, m.Formatter, m.WidgetID))
		}
		switch {
		case declared[m.Category]:
			used[m.Category] = true
		case m.Category == r.headerCategory:
		default:
			errs = append(errs, fmt.Errorf("%w: %q on %q", ErrUnknownCategory, m.Category, m.WidgetID))
		}
	}

	if r.emptyPolicy == EmptyCategoriesReject {
		for _, c := range r.categories {
			if !used[c] {
				errs = append(errs, fmt.Errorf("%w: %q", ErrEmptyCategory, c))
			}
		}
	}

	return errors.Join(errs...)
}

// Metrics returns the descriptors in declaration order. The order is the
// column order of the latest-reading query.
func (r *Registry) Metrics() []Descriptor {
	return append([]Descriptor(nil), r.metrics...)
}

// Categories returns the section order, independent of metric order.
func (r *Registry) Categories() []string {
	return append([]string(nil), r.categories...)
}

func (r *Registry) Len() int { return len(r.metrics) }

func (r *Registry) EmptyCategories() EmptyCategoryPolicy { return r.emptyPolicy }

func (r *Registry) HeaderCategory() string { return r.headerCategory }

// Lookup finds a descriptor by widget id.
func (r *Registry) Lookup(widgetID string) (Descriptor, bool) {
	i, ok := r.index[widgetID]
	if !ok {
		return Descriptor{}, false
	}
	return r.metrics[i], true
}

// Expressions returns the source expressions in registry order, ready to be
// joined into a SELECT list.
func (r *Registry) Expressions() []string {
	out := make([]string, len(r.metrics))
	for i, m := range r.metrics {
		out[i] = m.Expression
	}
	return out
}
