package locs

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
)

func kind(t *testing.T, label string) Kind {
	t.Helper()
	for _, k := range Kinds {
		if k.Label == label {
			return k
		}
	}
	t.Fatalf("no kind %q", label)
	return Kind{}
}

func TestKindsTable(t *testing.T) {
	want := map[string]string{"home": "h", "pokemon_pointer": "p", "raid": "r", "invasion": "i"}
	if len(Kinds) != len(want) {
		t.Fatalf("len(Kinds) = %d, want %d", len(Kinds), len(want))
	}
	for _, k := range Kinds {
		if want[k.Label] != k.Key {
			t.Errorf("kind %s key = %q, want %q", k.Label, k.Key, want[k.Label])
		}
	}
}

func TestPointValid(t *testing.T) {
	doc, err := Parse(`{"locs":{"h":[45.07,7.68],"p":["45.1","7.7"],"r":[45,"7"],"i":[-1.5e1,2]}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cases := map[string]orb.Point{
		"home":            {45.07, 7.68},
		"pokemon_pointer": {45.1, 7.7},
		"raid":            {45, 7},
		"invasion":        {-15, 2},
	}
	for label, want := range cases {
		got, err := doc.Point(kind(t, label))
		if err != nil {
			t.Errorf("%s: %v", label, err)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", label, got, want)
		}
	}
}

func TestPointAbsent(t *testing.T) {
	cases := map[string]string{
		"no locs":      `{}`,
		"no key":       `{"locs":{"p":[1,2]}}`,
		"null key":     `{"locs":{"h":null}}`,
		"empty array":  `{"locs":{"h":[]}}`,
		"empty x":      `{"locs":{"h":["",""]}}`,
		"empty y only": `{"locs":{"h":["",7]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = doc.Point(kind(t, "home"))
			if name == "empty y only" {
				if !errors.Is(err, ErrIncomplete) {
					t.Fatalf("err = %v, want ErrIncomplete", err)
				}
				return
			}
			if !errors.Is(err, ErrAbsent) {
				t.Fatalf("err = %v, want ErrAbsent", err)
			}
		})
	}
}

func TestPointMalformed(t *testing.T) {
	cases := map[string]string{
		"text":          `{"locs":{"h":["abc",7]}}`,
		"bool":          `{"locs":{"h":[true,7]}}`,
		"object":        `{"locs":{"h":[{"x":1},7]}}`,
		"nested":        `{"locs":{"h":[[1],7]}}`,
		"null elem":     `{"locs":{"h":[45,null]}}`,
		"out of range":  `{"locs":{"h":[1e400,7]}}`,
		"nan string":    `{"locs":{"h":["NaN",7]}}`,
		"not array":     `{"locs":{"h":"45,7"}}`,
		"one element":   `{"locs":{"h":[45]}}`,
		"empty and bad": `{"locs":{"h":["","x"]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = doc.Point(kind(t, "home"))
			var ve *ValueError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValueError", err)
			}
			if errors.Is(err, ErrAbsent) {
				t.Fatalf("malformed value must not be reported as absent")
			}
		})
	}
}

func TestPointMalformedDoesNotAffectOtherKinds(t *testing.T) {
	doc, err := Parse(`{"locs":{"h":["abc",7],"r":[1,2]}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := doc.Point(kind(t, "home")); err == nil {
		t.Fatal("home should fail")
	}
	if p, err := doc.Point(kind(t, "raid")); err != nil || p != (orb.Point{1, 2}) {
		t.Fatalf("raid = %v, %v", p, err)
	}
}

func TestPointOutOfRangeDoesNotAffectOtherKinds(t *testing.T) {
	doc, err := Parse(`{"locs":{"h":[1e400,7],"p":[1,-1e999],"r":[25,25]}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, label := range []string{"home", "pokemon_pointer"} {
		var ve *ValueError
		if _, err := doc.Point(kind(t, label)); !errors.As(err, &ve) {
			t.Errorf("%s: err = %v, want *ValueError", label, err)
		}
	}
	if p, err := doc.Point(kind(t, "raid")); err != nil || p != (orb.Point{25, 25}) {
		t.Fatalf("raid = %v, %v", p, err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, raw := range []string{"", "   ", "{", `{"locs":"x"}`, `{"locs":[1,2]}`} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) should fail", raw)
		}
	}
}

func TestToFloat(t *testing.T) {
	if f, err := ToFloat("12.5"); err != nil || f != 12.5 {
		t.Errorf("ToFloat(\"12.5\") = %v, %v", f, err)
	}
	if f, err := ToFloat(float64(3)); err != nil || f != 3 {
		t.Errorf("ToFloat(3.0) = %v, %v", f, err)
	}
	if _, err := ToFloat(""); !errors.Is(err, ErrAbsent) {
		t.Errorf("ToFloat(\"\") err = %v, want ErrAbsent", err)
	}
	if _, err := ToFloat(false); err == nil {
		t.Error("ToFloat(false) should fail")
	}
	if f, err := ToFloat(json.RawMessage(`-7.25`)); err != nil || f != -7.25 {
		t.Errorf("ToFloat(raw -7.25) = %v, %v", f, err)
	}
	if f, err := ToFloat(json.RawMessage(`"8"`)); err != nil || f != 8 {
		t.Errorf("ToFloat(raw \"8\") = %v, %v", f, err)
	}
	if _, err := ToFloat(json.RawMessage(`""`)); !errors.Is(err, ErrAbsent) {
		t.Errorf("ToFloat(raw \"\") err = %v, want ErrAbsent", err)
	}
	if _, err := ToFloat(json.RawMessage(`1e400`)); err == nil {
		t.Error("ToFloat(raw 1e400) should fail")
	}
	if _, err := ToFloat(nil); err == nil {
		t.Error("ToFloat(nil) should fail")
	}
}
