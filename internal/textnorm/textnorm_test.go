package textnorm

import (
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "whitespace only", in: " \t\n ", want: nil},
		{name: "synonyms fold", in: "React.js and Node.js", want: []string{"react", "and", "node"}},
		{name: "trailing punctuation", in: "Built apps with Node.", want: []string{"built", "apps", "with", "node"}},
		{name: "symbols kept", in: "C++, C# and Go", want: []string{"c++", "c#", "and", "go"}},
		{name: "collapses whitespace", in: "  Senior   Golang\tEngineer ", want: []string{"senior", "go", "engineer"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokens(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokens(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ReactJS   +  TS "); got != "react + typescript" {
		t.Fatalf("Normalize = %q", got)
	}
}

func TestKeywordsDropsStopWordsAndDuplicates(t *testing.T) {
	got := Keywords("The React team uses React and Node with the cloud")
	want := []string{"react", "team", "uses", "node", "cloud"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keywords = %#v, want %#v", got, want)
	}
}

func TestSet(t *testing.T) {
	set := Set("Postgres, k8s")
	for _, key := range []string{"postgresql", "kubernetes"} {
		if _, ok := set[key]; !ok {
			t.Fatalf("expected %q in set %v", key, set)
		}
	}
}
