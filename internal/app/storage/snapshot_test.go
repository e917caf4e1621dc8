package storage

import (
	"strings"
	"testing"

	"thinksync/internal/pkg/errs"
)

func TestValidateSnapshotSize(t *testing.T) {
	if err := ValidateSnapshotSize(1024); err != nil {
		t.Fatalf("1 KiB snapshot rejected: %v", err)
	}
	if err := ValidateSnapshotSize(MaxSnapshotSize); err != nil {
		t.Fatalf("snapshot at the cap rejected: %v", err)
	}

	if err := ValidateSnapshotSize(0); err == nil || err.Code != errs.ErrInvalidParams {
		t.Fatalf("zero size accepted or wrong code: %v", err)
	}
	if err := ValidateSnapshotSize(-1); err == nil {
		t.Fatalf("negative size accepted")
	}
	if err := ValidateSnapshotSize(MaxSnapshotSize + 1); err == nil || err.Code != errs.ErrSnapshotTooLarge {
		t.Fatalf("oversized snapshot accepted or wrong code: %v", err)
	}
}

func TestValidateSnapshotType(t *testing.T) {
	for _, mime := range []string{"image/png", "image/jpeg", "image/webp", "image/svg+xml", "IMAGE/PNG"} {
		if err := ValidateSnapshotType(mime); err != nil {
			t.Fatalf("%s rejected: %v", mime, err)
		}
	}
	for _, mime := range []string{"", "image/gif", "application/pdf", "text/html"} {
		if err := ValidateSnapshotType(mime); err == nil {
			t.Fatalf("%q accepted", mime)
		}
	}
}

func TestNewSnapshotKey(t *testing.T) {
	key := NewSnapshotKey("board-1", "image/png")

	if !strings.HasPrefix(key, "snapshots/board-1/") {
		t.Fatalf("key %q not under the board namespace", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key %q missing extension", key)
	}
	if err := ValidateSnapshotKey(key, "board-1"); err != nil {
		t.Fatalf("freshly minted key rejected: %v", err)
	}

	if other := NewSnapshotKey("board-1", "image/png"); other == key {
		t.Fatalf("two snapshot keys collided: %q", key)
	}
}

func TestValidateSnapshotKeyRejectsForeignKeys(t *testing.T) {
	cases := []string{
		"",
		"snapshots/board-2/abc.png",
		"uploads/board-1/abc.png",
		"snapshots/board-1/../board-2/abc.png",
	}
	for _, key := range cases {
		if err := ValidateSnapshotKey(key, "board-1"); err == nil || err.Code != errs.ErrSnapshotKeyInvalid {
			t.Fatalf("key %q accepted or wrong code: %v", key, err)
		}
	}
}
