package league

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NotEnteredText is the placeholder the score feed writes for a missing card.
const NotEnteredText = "Not Entered"

// ScoreValue is either a numeric score or a "not entered" marker. The raw
// text of a non-numeric value is kept so it can be echoed back unchanged.
type ScoreValue struct {
	n       int
	numeric bool
	raw     string
}

// Numeric returns an entered score.
func Numeric(n int) ScoreValue { return ScoreValue{n: n, numeric: true} }

// NotEntered returns a missing score carrying its original text.
func NotEntered(raw string) ScoreValue { return ScoreValue{raw: raw} }

// Int returns the score and whether it was entered.
func (v ScoreValue) Int() (int, bool) { return v.n, v.numeric }

func (v ScoreValue) IsNumeric() bool { return v.numeric }

// Value coerces the score for summation: not-entered counts as 0.
func (v ScoreValue) Value() int {
	if !v.numeric {
		return 0
	}
	return v.n
}

// Raw is the original placeholder text of a not-entered value.
func (v ScoreValue) Raw() string { return v.raw }

// Equal reports whether both values hold the same score or the same
// placeholder text.
func (v ScoreValue) Equal(o ScoreValue) bool { return v == o }

func (v ScoreValue) String() string {
	if v.numeric {
		return strconv.Itoa(v.n)
	}
	return v.raw
}

// Any converts the value to a plain Go value: int or string (nil when the
// value was never recorded).
func (v ScoreValue) Any() any {
	if v.numeric {
		return v.n
	}
	if v.raw == "" {
		return nil
	}
	return v.raw
}

func (v ScoreValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ParseScore(raw)
	return nil
}

// ParseScore coerces a decoded document value. Integers and integral strings
// become Numeric; fractional numbers are truncated toward zero; anything else
// is NotEntered.
func ParseScore(v any) ScoreValue {
	switch x := v.(type) {
	case nil:
		return ScoreValue{}
	case ScoreValue:
		return x
	case int:
		return Numeric(x)
	case int32:
		return Numeric(int(x))
	case int64:
		return Numeric(int(x))
	case float32:
		return fromFloat(float64(x), "")
	case float64:
		return fromFloat(x, "")
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Numeric(int(n))
		}
		if f, err := x.Float64(); err == nil {
			return fromFloat(f, x.String())
		}
		return NotEntered(x.String())
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.Atoi(s); err == nil {
			return Numeric(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromFloat(f, x)
		}
		return NotEntered(x)
	default:
		return NotEntered(fmt.Sprint(x))
	}
}

func fromFloat(f float64, raw string) ScoreValue {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		if raw == "" {
			raw = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return NotEntered(raw)
	}
	return Numeric(int(math.Trunc(f)))
}

// Scores is what was recorded for one segment (F9, B9 or F18): a single
// score for Tour tournaments, a list of round scores for Stonehenge. The shape
// is preserved exactly as stored; the scoring engine decides whether it fits
// the tournament format.
type Scores struct {
	values []ScoreValue
	list   bool
}

// Single wraps one score.
func Single(v ScoreValue) Scores { return Scores{values: []ScoreValue{v}} }

// Rounds wraps an ordered list of round scores.
func Rounds(vs ...ScoreValue) Scores {
	return Scores{values: append([]ScoreValue(nil), vs...), list: true}
}

// RoundInts is a test and fixture helper building a list of entered rounds.
func RoundInts(ns ...int) Scores {
	vs := make([]ScoreValue, len(ns))
	for i, n := range ns {
		vs[i] = Numeric(n)
	}
	return Scores{values: vs, list: true}
}

// IsList reports whether the stored value was a list.
func (s Scores) IsList() bool { return s.list }

// Scalar returns the single stored value. ok is false for lists. A segment
// that was never recorded yields a zero NotEntered value.
func (s Scores) Scalar() (ScoreValue, bool) {
	if s.list {
		return ScoreValue{}, false
	}
	if len(s.values) == 0 {
		return ScoreValue{}, true
	}
	return s.values[0], true
}

// List returns a copy of the stored rounds, or nil for scalars.
func (s Scores) List() []ScoreValue {
	if !s.list {
		return nil
	}
	return append([]ScoreValue(nil), s.values...)
}

// Any converts to plain Go values for document stores that cannot use the
// JSON codec.
func (s Scores) Any() any {
	if !s.list {
		v, _ := s.Scalar()
		return v.Any()
	}
	out := make([]any, len(s.values))
	for i, v := range s.values {
		out[i] = v.Any()
	}
	return out
}

// ScoresFromAny is the inverse of Any.
func ScoresFromAny(v any) Scores {
	switch x := v.(type) {
	case nil:
		return Scores{}
	case []any:
		vs := make([]ScoreValue, len(x))
		for i, e := range x {
			vs[i] = ParseScore(e)
		}
		return Scores{values: vs, list: true}
	case []ScoreValue:
		return Rounds(x...)
	default:
		return Single(ParseScore(x))
	}
}

func (s Scores) Equal(o Scores) bool {
	if s.list != o.list {
		return false
	}
	if !s.list {
		a, _ := s.Scalar()
		b, _ := o.Scalar()
		return a == b
	}
	if len(s.values) != len(o.values) {
		return false
	}
	for i := range s.values {
		if s.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

func (s Scores) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Any())
}

func (s *Scores) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ScoresFromAny(raw)
	return nil
}
