package store

import "testing"

func TestPermissionValid(t *testing.T) {
	for _, p := range []Permission{PermissionRead, PermissionWrite, PermissionAdmin} {
		if !p.Valid() {
			t.Fatalf("%s should be valid", p)
		}
	}
	for _, p := range []Permission{"", "owner", "READ", "rw"} {
		if p.Valid() {
			t.Fatalf("%q should be invalid", p)
		}
	}
}

func TestPermissionLevels(t *testing.T) {
	if PermissionRead.CanWrite() {
		t.Fatalf("read grant must not allow writes")
	}
	if !PermissionWrite.CanWrite() || !PermissionAdmin.CanWrite() {
		t.Fatalf("write and admin grants must allow writes")
	}
	if PermissionRead.CanManage() || PermissionWrite.CanManage() {
		t.Fatalf("only admin may manage collaborators")
	}
	if !PermissionAdmin.CanManage() {
		t.Fatalf("admin grant must allow managing collaborators")
	}
}
