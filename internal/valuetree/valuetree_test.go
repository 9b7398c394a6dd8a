package valuetree

import "testing"

func TestSetPathCreatesNestedDicts(t *testing.T) {
	got, err := SetPath(nil, []string{"vars", "os"}, "linux")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	v, ok := GetPath(got, []string{"vars", "os"})
	if !ok || v != "linux" {
		t.Fatalf("GetPath(vars.os) = %v, %v; want linux, true", v, ok)
	}
}

func TestSetPathOverwritesLeaf(t *testing.T) {
	d, _ := SetPath(nil, []string{"vars", "os"}, "linux")
	d, err := SetPath(d, []string{"vars", "os"}, "bsd")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	v, _ := GetPath(d, []string{"vars", "os"})
	if v != "bsd" {
		t.Errorf("GetPath(vars.os) = %v, want bsd", v)
	}
}

func TestSetPathFailsOnNonDictIntermediate(t *testing.T) {
	root := Dict{"vars": "not-a-dict"}
	if _, err := SetPath(root, []string{"vars", "os"}, "linux"); err == nil {
		t.Errorf("expected error when an intermediate value is not a mapping")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Dict{"vars": Dict{"os": "linux"}}
	clone := Clone(orig).(Dict)

	inner := clone["vars"].(Dict)
	inner["os"] = "bsd"

	origInner := orig["vars"].(Dict)
	if origInner["os"] != "linux" {
		t.Errorf("mutating the clone affected the original: %v", origInner["os"])
	}
}

func TestGetPathMissingIsNotOK(t *testing.T) {
	if _, ok := GetPath(Dict{}, []string{"vars", "os"}); ok {
		t.Errorf("GetPath on missing path should return ok=false")
	}
}
