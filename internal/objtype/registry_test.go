package objtype

import "testing"

type fakeObj struct{ name string }

func (f *fakeObj) FullName() string { return f.name }

func TestRegisterAndByName(t *testing.T) {
	typ := RegisterType("TestType1", "testtype1s", nil, nil)

	obj := &fakeObj{name: "t1"}
	if err := typ.Register(obj); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := typ.ByName("t1")
	if !ok {
		t.Fatalf("ByName(t1) not found")
	}
	if got.FullName() != "t1" {
		t.Errorf("got %q, want t1", got.FullName())
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	typ := RegisterType("TestType2", "testtype2s", nil, nil)

	if err := typ.Register(&fakeObj{name: "dup"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := typ.Register(&fakeObj{name: "dup"}); err == nil {
		t.Errorf("second Register of the same name should fail")
	}
}

func TestUnregisterRemoves(t *testing.T) {
	typ := RegisterType("TestType3", "testtype3s", nil, nil)
	obj := &fakeObj{name: "t3"}
	_ = typ.Register(obj)

	typ.Unregister(obj)

	if _, ok := typ.ByName("t3"); ok {
		t.Errorf("object should no longer be registered after Unregister")
	}
}

func TestAllAcrossShards(t *testing.T) {
	typ := RegisterType("TestType4", "testtype4s", nil, nil)
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, n := range names {
		_ = typ.Register(&fakeObj{name: n})
	}

	all := typ.All()
	if len(all) != len(names) {
		t.Fatalf("All() returned %d objects, want %d", len(all), len(names))
	}
}

func TestRegisterTypePanicsOnDuplicate(t *testing.T) {
	RegisterType("TestType5", "testtype5s", nil, nil)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on duplicate RegisterType")
		}
	}()
	RegisterType("TestType5", "testtype5s", nil, nil)
}
