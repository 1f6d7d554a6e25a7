package clauses

import (
	"encoding/json"
	"fmt"
)

// parseProjectionValue coerces an untrusted request value into a
// ProjectionInput: null, a list of names, or a name→0|1 mapping.
func parseProjectionValue(v any) (ProjectionInput, error) {
	switch value := v.(type) {
	case nil:
		return ProjectionInput{}, nil
	case []string:
		return ProjectionInput{Names: append([]string{}, value...)}, nil
	case []any:
		names := make([]string, 0, len(value))
		for _, item := range value {
			name, ok := item.(string)
			if !ok {
				return ProjectionInput{}, &InvalidInputError{Reason: "projection list entries must be strings"}
			}
			names = append(names, name)
		}
		return ProjectionInput{Names: names}, nil
	case map[string]int:
		flags := make(map[string]int, len(value))
		for name, d := range value {
			flags[name] = normalizeDirective(d)
		}
		return ProjectionInput{Flags: flags}, nil
	case map[string]any:
		flags := make(map[string]int, len(value))
		for name, raw := range value {
			d, err := directiveValue(raw)
			if err != nil {
				return ProjectionInput{}, err
			}
			flags[name] = d
		}
		return ProjectionInput{Flags: flags}, nil
	default:
		return ProjectionInput{}, &InvalidInputError{Reason: "projection must be null, a list of names, or a name-to-directive mapping"}
	}
}

func normalizeDirective(d int) int {
	if d != 0 {
		return 1
	}
	return 0
}

func directiveValue(raw any) (int, error) {
	switch value := raw.(type) {
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	case int:
		return normalizeDirective(value), nil
	case float64:
		n := int(value)
		if float64(n) != value {
			return 0, &InvalidInputError{Reason: "projection directives must be 0 or 1"}
		}
		return normalizeDirective(n), nil
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0, &InvalidInputError{Reason: "projection directives must be 0 or 1"}
		}
		return normalizeDirective(int(n)), nil
	default:
		return 0, &InvalidInputError{Reason: "projection directives must be 0 or 1"}
	}
}

// parseSortValue coerces an untrusted request value into a SortInput:
// null, an ordered list of optionally signed names, or a one-entry
// mapping.
func parseSortValue(v any, operation string) (SortInput, error) {
	switch value := v.(type) {
	case nil:
		return SortInput{}, nil
	case []string:
		return SortInput{Names: append([]string{}, value...)}, nil
	case []any:
		names := make([]string, 0, len(value))
		for _, item := range value {
			name, ok := item.(string)
			if !ok {
				return SortInput{}, &InvalidInputError{Reason: operation + " list entries must be strings"}
			}
			names = append(names, name)
		}
		return SortInput{Names: names}, nil
	case map[string]int:
		flags := make(map[string]int, len(value))
		for name, d := range value {
			flags[name] = d
		}
		return SortInput{Flags: flags}, nil
	case map[string]any:
		flags := make(map[string]int, len(value))
		for name, raw := range value {
			d, err := signedValue(raw, operation)
			if err != nil {
				return SortInput{}, err
			}
			flags[name] = d
		}
		return SortInput{Flags: flags}, nil
	default:
		return SortInput{}, &InvalidInputError{Reason: operation + " must be null, a list of names, or a one-entry mapping"}
	}
}

func signedValue(raw any, operation string) (int, error) {
	switch value := raw.(type) {
	case int:
		return value, nil
	case float64:
		n := int(value)
		if float64(n) != value {
			return 0, &InvalidInputError{Reason: operation + " directions must be +1 or -1"}
		}
		return n, nil
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0, &InvalidInputError{Reason: operation + " directions must be +1 or -1"}
		}
		return int(n), nil
	default:
		return 0, &InvalidInputError{Reason: operation + " directions must be +1 or -1"}
	}
}

// parseAggregateValue coerces an untrusted request value into an
// AggregateInput: null or a label-to-expression mapping, where each
// expression is an attribute name or a one-key operator object.
func parseAggregateValue(v any) (AggregateInput, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		input := make(AggregateInput, len(value))
		for label, raw := range value {
			term, err := parseAggregateTerm(raw, label)
			if err != nil {
				return nil, err
			}
			input[label] = term
		}
		return input, nil
	default:
		return nil, &InvalidInputError{Reason: "aggregate must be null or a label-to-expression mapping"}
	}
}

func parseAggregateTerm(raw any, label string) (AggregateTerm, error) {
	switch expr := raw.(type) {
	case string:
		return AggregateTerm{Name: expr}, nil
	case map[string]any:
		if len(expr) != 1 {
			return AggregateTerm{}, &InvalidInputError{
				Reason: fmt.Sprintf("aggregate expression for %q must contain exactly one operator", label),
			}
		}
		var operator string
		var operand any
		for k, v := range expr {
			operator, operand = k, v
		}
		switch value := operand.(type) {
		case string:
			return AggregateTerm{Operator: operator, Name: value}, nil
		case int:
			return AggregateTerm{Operator: operator, Constant: &value}, nil
		case float64:
			n := int(value)
			if float64(n) != value {
				return AggregateTerm{}, &InvalidInputError{
					Reason: fmt.Sprintf("aggregate operand for %q must be an integer", label),
				}
			}
			return AggregateTerm{Operator: operator, Constant: &n}, nil
		case json.Number:
			n64, err := value.Int64()
			if err != nil {
				return AggregateTerm{}, &InvalidInputError{
					Reason: fmt.Sprintf("aggregate operand for %q must be an integer", label),
				}
			}
			n := int(n64)
			return AggregateTerm{Operator: operator, Constant: &n}, nil
		default:
			return AggregateTerm{}, &InvalidInputError{
				Reason: fmt.Sprintf("aggregate operand for %q must be an attribute name or an integer", label),
			}
		}
	default:
		return AggregateTerm{}, &InvalidInputError{
			Reason: fmt.Sprintf("aggregate expression for %q must be an attribute name or an operator object", label),
		}
	}
}

// parseIntValue coerces an optional integer request value.
func parseIntValue(v any, field string) (*int, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &value, nil
	case float64:
		n := int(value)
		if float64(n) != value {
			return nil, &InvalidInputError{Reason: field + " must be an integer or null"}
		}
		return &n, nil
	case json.Number:
		n64, err := value.Int64()
		if err != nil {
			return nil, &InvalidInputError{Reason: field + " must be an integer or null"}
		}
		n := int(n64)
		return &n, nil
	default:
		return nil, &InvalidInputError{Reason: fmt.Sprintf("%s must be an integer or null", field)}
	}
}

// parseBoolValue coerces an optional boolean request value.
func parseBoolValue(v any, field string) (bool, error) {
	switch value := v.(type) {
	case nil:
		return false, nil
	case bool:
		return value, nil
	default:
		return false, &InvalidInputError{Reason: field + " must be a boolean"}
	}
}
