package fieldmap

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/petsync/syncd/internal/models"
)

// localDateLayout is the calendar-date format used by the local store.
// Time-of-day is dropped when a value crosses to the remote side.
const localDateLayout = "2006-01-02"

func toRemoteString(v interface{}) (interface{}, error) {
	return asString(v)
}

func toLocalString(v interface{}) (interface{}, error) {
	return asString(v)
}

// dateToRemote parses the local YYYY-MM-DD string into a UTC calendar date.
// An empty string maps to an absent remote value.
func dateToRemote(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// dateToLocal renders the remote date back to the local YYYY-MM-DD string.
func dateToLocal(v interface{}) (interface{}, error) {
	switch d := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return d.UTC().Format(localDateLayout), nil
	case *time.Time:
		if d == nil {
			return "", nil
		}
		return d.UTC().Format(localDateLayout), nil
	case string:
		if d == "" {
			return "", nil
		}
		t, err := parseDate(d)
		if err != nil {
			return nil, err
		}
		return t.Format(localDateLayout), nil
	default:
		return nil, fmt.Errorf("unsupported date value %T", v)
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(localDateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// weightToRemote parses the local decimal string into a number. An empty
// string maps to an absent remote value.
func weightToRemote(v interface{}) (interface{}, error) {
	switch w := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return w, nil
	case string:
		if w == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q", w)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported weight value %T", v)
	}
}

// weightToLocal restringifies the remote number. Trailing zeros are not
// preserved: "12.50" round-trips to "12.5".
func weightToLocal(v interface{}) (interface{}, error) {
	switch w := v.(type) {
	case nil:
		return "", nil
	case float64:
		return strconv.FormatFloat(w, 'f', -1, 64), nil
	case *float64:
		if w == nil {
			return "", nil
		}
		return strconv.FormatFloat(*w, 'f', -1, 64), nil
	case string:
		if w == "" {
			return "", nil
		}
		f, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q", w)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	default:
		return nil, fmt.Errorf("unsupported weight value %T", v)
	}
}

// setToRemote normalizes a set-valued field to a sorted string slice so
// remote writes are deterministic. Element order carries no meaning.
func setToRemote(v interface{}) (interface{}, error) {
	s, ok := toStringSlice(v)
	if !ok {
		if v == nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("unsupported set value %T", v)
	}
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out, nil
}

func setToLocal(v interface{}) (interface{}, error) {
	s, ok := toStringSlice(v)
	if !ok {
		if v == nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("unsupported set value %T", v)
	}
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

func providerToRemote(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"provider": s}, nil
}

func providerToLocal(v interface{}) (interface{}, error) {
	return compositeField(v, "provider")
}

func policyToRemote(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"policy_number": s}, nil
}

func policyToLocal(v interface{}) (interface{}, error) {
	return compositeField(v, "policy_number")
}

func compositeField(v interface{}, key string) (interface{}, error) {
	switch c := v.(type) {
	case nil:
		return "", nil
	case map[string]interface{}:
		return asString(c[key])
	case models.RemoteInsurance:
		return insuranceField(&c, key), nil
	case *models.RemoteInsurance:
		if c == nil {
			return "", nil
		}
		return insuranceField(c, key), nil
	default:
		return nil, fmt.Errorf("unsupported insurance value %T", v)
	}
}

func insuranceField(ins *models.RemoteInsurance, key string) string {
	if key == "provider" {
		return ins.Provider
	}
	return ins.PolicyNumber
}

func asString(v interface{}) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}
