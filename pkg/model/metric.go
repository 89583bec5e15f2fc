package model

import (
	"encoding/json"
	"fmt"
)

// MetricKind discriminates the value held by a MetricValue.
type MetricKind int

const (
	MetricNumber MetricKind = iota
	MetricText
	MetricList
)

// MetricValue holds one metric reported by an analysis step. A value is
// exactly one of: a number, a text string, or an ordered list of strings.
type MetricValue struct {
	kind MetricKind
	num  float64
	text string
	list []string
}

// Number builds a numeric metric value.
func Number(v float64) MetricValue {
	return MetricValue{kind: MetricNumber, num: v}
}

// Text builds a string metric value.
func Text(s string) MetricValue {
	return MetricValue{kind: MetricText, text: s}
}

// List builds an ordered string-list metric value.
func List(items ...string) MetricValue {
	return MetricValue{kind: MetricList, list: items}
}

func (v MetricValue) Kind() MetricKind { return v.kind }

func (v MetricValue) Num() float64 { return v.num }

func (v MetricValue) Str() string { return v.text }

// Items returns a copy of the list value.
func (v MetricValue) Items() []string {
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// String renders the value for display regardless of kind.
func (v MetricValue) String() string {
	switch v.kind {
	case MetricNumber:
		return trimFloat(v.num)
	case MetricList:
		s := ""
		for i, item := range v.list {
			if i > 0 {
				s += ", "
			}
			s += item
		}
		return s
	default:
		return v.text
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

func (v MetricValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case MetricNumber:
		return json.Marshal(v.num)
	case MetricList:
		if v.list == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.text)
	}
}

func (v *MetricValue) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Number(num)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = Text(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = List(list...)
		return nil
	}
	return fmt.Errorf("metric value must be a number, string or string list, got %s", string(data))
}

// Confidence is an optional score in [0,1]. The zero value means unknown.
type Confidence struct {
	Known bool
	Value float64
}

// ConfidenceOf builds a known confidence score.
func ConfidenceOf(v float64) Confidence {
	return Confidence{Known: true, Value: v}
}

// Clamp bounds a known score into [0,1]; unknown passes through.
func (c Confidence) Clamp() Confidence {
	if !c.Known {
		return c
	}
	if c.Value < 0 {
		c.Value = 0
	}
	if c.Value > 1 {
		c.Value = 1
	}
	return c
}

func (c Confidence) String() string {
	if !c.Known {
		return "unknown"
	}
	return trimFloat(c.Value)
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return json.Marshal("unknown")
	}
	return json.Marshal(c.Value)
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `"unknown"` || s == `""` {
		*c = Confidence{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("confidence must be a number in [0,1] or \"unknown\", got %s", s)
	}
	*c = ConfidenceOf(v)
	return nil
}
