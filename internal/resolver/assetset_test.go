package resolver

import (
	"reflect"
	"testing"
)

func TestAssetSet_Add(t *testing.T) {
	s := NewAssetSet()

	if !s.Add(`World\wmo\Tree.wmo`) {
		t.Error("expected first add to be new")
	}
	if s.Add("world/WMO/tree.wmo") {
		t.Error("expected different spelling of the same file to be a duplicate")
	}
	if s.Add("") {
		t.Error("expected empty path to be ignored")
	}
	s.Add("World/model/Rock.m2")

	want := []string{"World/wmo/Tree.wmo", "World/model/Rock.m2"}
	if got := s.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if !s.Contains(`WORLD\MODEL\ROCK.M2`) {
		t.Error("expected Contains to ignore case and separators")
	}
}

func TestAssetSet_Since(t *testing.T) {
	s := NewAssetSet()
	s.Add("a")
	s.Add("b")
	s.Add("c")

	if got := s.Since(1); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("got %v", got)
	}
	if got := s.Since(3); got != nil {
		t.Errorf("expected nil, got %v", got)
	}

	// Returned slices are copies.
	got := s.Paths()
	got[0] = "changed"
	if s.Paths()[0] != "a" {
		t.Error("Paths must not expose internal storage")
	}
}
