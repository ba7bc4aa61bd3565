// Package validation evaluates publishing rules written in CEL.
//
// A rule is a boolean expression over one language version of an entity. The
// variables available to every expression are:
//
//	name             string  main name in the language
//	alternateName    string
//	description      string  plain text of the main description
//	shortDescription string
//	language         string  language code, e.g. "fi"
//	organization     string  owning organization id, "" when unset
//	attributes       map(string, dyn)  kind specific values
//
// The CEL strings extension (trim, lowerAscii, ...) is enabled.
package validation

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"ptv/internal/core/apperror"
)

// Entity kinds with rule sets.
const (
	KindService            = "service"
	KindChannel            = "channel"
	KindOrganization       = "organization"
	KindGeneralDescription = "general_description"
)

// Rule is a named boolean expression. A rule passes when the expression is true.
type Rule struct {
	Name    string `mapstructure:"name" json:"name"`
	Expr    string `mapstructure:"expr" json:"expr"`
	Message string `mapstructure:"message" json:"message"`
}

// Input is one language version presented to the rules.
type Input struct {
	Language         string
	Name             string
	AlternateName    string
	Description      string
	ShortDescription string
	Organization     string
	Attributes       map[string]any
}

func (in Input) activation() map[string]any {
	attrs := in.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return map[string]any{
		"name":             in.Name,
		"alternateName":    in.AlternateName,
		"description":      in.Description,
		"shortDescription": in.ShortDescription,
		"language":         in.Language,
		"organization":     in.Organization,
		"attributes":       attrs,
	}
}

// Violation is a failed rule for one language.
type Violation struct {
	Language string `json:"language"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

type compiled struct {
	rule Rule
	prg  cel.Program
}

// Engine holds compiled rule sets per entity kind. Safe for concurrent use.
type Engine struct {
	kinds map[string][]compiled
}

// NewEngine compiles every rule. A rule that does not compile fails construction.
func NewEngine(rules map[string][]Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		cel.Variable("name", cel.StringType),
		cel.Variable("alternateName", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("shortDescription", cel.StringType),
		cel.Variable("language", cel.StringType),
		cel.Variable("organization", cel.StringType),
		cel.Variable("attributes", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}

	e := &Engine{kinds: make(map[string][]compiled, len(rules))}
	for kind, list := range rules {
		for _, r := range list {
			ast, iss := env.Compile(r.Expr)
			if iss != nil && iss.Err() != nil {
				return nil, fmt.Errorf("compile rule %s/%s: %w", kind, r.Name, iss.Err())
			}
			prg, err := env.Program(ast)
			if err != nil {
				return nil, fmt.Errorf("program rule %s/%s: %w", kind, r.Name, err)
			}
			e.kinds[kind] = append(e.kinds[kind], compiled{rule: r, prg: prg})
		}
	}
	return e, nil
}

// Evaluate runs the rules of kind against every input and returns the violations
// ordered by language then rule. Evaluation errors count as violations.
func (e *Engine) Evaluate(kind string, inputs []Input) []Violation {
	var out []Violation
	for _, in := range inputs {
		vars := in.activation()
		for _, c := range e.kinds[kind] {
			val, _, err := c.prg.Eval(vars)
			if err != nil {
				out = append(out, Violation{Language: in.Language, Rule: c.rule.Name, Message: err.Error()})
				continue
			}
			if ok, isBool := val.Value().(bool); !isBool || !ok {
				out = append(out, Violation{Language: in.Language, Rule: c.rule.Name, Message: c.rule.Message})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}

// Check is Evaluate returning an AppError when any rule fails.
func (e *Engine) Check(kind string, inputs []Input) error {
	if v := e.Evaluate(kind, inputs); len(v) > 0 {
		return apperror.NewPublishValidation(v).WithDetail("kind", kind)
	}
	return nil
}

// Rules returns the number of rules configured for kind.
func (e *Engine) Rules(kind string) int {
	return len(e.kinds[kind])
}

// DefaultRules are the publishing requirements every language version must meet.
func DefaultRules() map[string][]Rule {
	nameRequired := Rule{Name: "name_required", Expr: `name.trim() != ""`, Message: "name is required"}
	orgRequired := Rule{Name: "organization_required", Expr: `organization != ""`, Message: "organization is required"}
	descRequired := Rule{Name: "description_required", Expr: `description.trim() != ""`, Message: "description is required"}
	shortDesc := Rule{
		Name:    "short_description_length",
		Expr:    `shortDescription.trim() != "" && size(shortDescription) <= 150`,
		Message: "short description is required and at most 150 characters",
	}
	nameLength := Rule{Name: "name_length", Expr: `size(name) <= 100`, Message: "name is at most 100 characters"}

	return map[string][]Rule{
		KindService:            {nameRequired, nameLength, orgRequired, descRequired, shortDesc},
		KindChannel:            {nameRequired, nameLength, orgRequired, shortDesc},
		KindOrganization:       {nameRequired, nameLength},
		KindGeneralDescription: {nameRequired, nameLength, descRequired, shortDesc},
	}
}
