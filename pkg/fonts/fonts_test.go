package fonts

import (
	"encoding/base64"
	"testing"
)

func TestRegularTTFBase64(t *testing.T) {
	got, err := base64.StdEncoding.DecodeString(RegularTTFBase64())
	if err != nil {
		t.Fatalf("RegularTTFBase64() is not valid base64: %v", err)
	}
	if len(got) != len(RegularTTF()) {
		t.Errorf("decoded length = %d, want %d", len(got), len(RegularTTF()))
	}
	if RegularTTFBase64() != RegularTTFBase64() {
		t.Error("RegularTTFBase64() not stable")
	}
}

func TestFace(t *testing.T) {
	f, err := Face(12)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	if f.Size() != 12 {
		t.Errorf("Size() = %v, want 12", f.Size())
	}
}
