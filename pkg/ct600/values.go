package ct600

import (
	"fmt"
	"strconv"
	"time"
)

// Values is the flat box-number to value map supplied by the fact source.
// Absent optional boxes are simply not present; they are never zero-filled.
type Values map[int]any

// present reports whether a box carries an emittable value. A nil value, or
// false in a yes-only box, counts as absent.
func present(def BoxDef, values Values) bool {
	if def.Fixed != "" {
		return true
	}
	v, ok := values[def.Box]
	if !ok || v == nil {
		return false
	}
	if def.Kind == KindYes {
		b, ok := v.(bool)
		return !ok || b
	}
	return true
}

// render converts a box value into its wire text per the box kind.
func render(def BoxDef, values Values) (string, error) {
	if def.Fixed != "" {
		return def.Fixed, nil
	}
	v := values[def.Box]

	fail := func() (string, error) {
		return "", &InvalidValueTypeError{Box: def.Box, Kind: def.Kind, Value: v}
	}

	switch def.Kind {
	case KindMoney, KindRate:
		f, ok := toFloat(v)
		if !ok {
			return fail()
		}
		return fmt.Sprintf("%.2f", f), nil

	case KindPounds:
		f, ok := toFloat(v)
		if !ok {
			return fail()
		}
		return fmt.Sprintf("%.2f", float64(int64(f))), nil

	case KindYesNo:
		b, ok := v.(bool)
		if !ok {
			return fail()
		}
		if b {
			return "yes", nil
		}
		return "no", nil

	case KindYes:
		if b, ok := v.(bool); ok && !b {
			return fail() // unreachable when present() gates emission
		}
		return "yes", nil

	case KindDate:
		switch d := v.(type) {
		case time.Time:
			return d.Format("2006-01-02"), nil
		case string:
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return fail()
			}
			return d, nil
		}
		return fail()

	case KindYear:
		switch y := v.(type) {
		case int:
			return strconv.Itoa(y), nil
		case string:
			if _, err := strconv.Atoi(y); err != nil {
				return fail()
			}
			return y, nil
		}
		return fail()

	case KindCompanyType:
		n, ok := toInt(v)
		if !ok {
			return fail()
		}
		return fmt.Sprintf("%02d", n), nil

	case KindText:
		switch s := v.(type) {
		case string:
			return s, nil
		case int:
			return strconv.Itoa(s), nil
		}
		return fail()
	}

	return fail()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
