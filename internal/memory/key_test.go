package memory

import (
	"errors"
	"testing"
)

func TestCompanionKey_StorageKeyDeterministic(t *testing.T) {
	a := CompanionKey{CompanionID: "c1", ModelName: "llama2-13b", UserID: "u1"}
	b := CompanionKey{CompanionID: "c1", ModelName: "llama2-13b", UserID: "u1"}

	if a.StorageKey() != b.StorageKey() {
		t.Errorf("equal keys produced %q and %q", a.StorageKey(), b.StorageKey())
	}
}

func TestCompanionKey_StorageKeyDistinct(t *testing.T) {
	keys := []CompanionKey{
		{CompanionID: "a-b", ModelName: "c", UserID: "d"},
		{CompanionID: "a", ModelName: "b-c", UserID: "d"},
		{CompanionID: "a", ModelName: "b", UserID: "c-d"},
		{CompanionID: "a:1", ModelName: "b", UserID: "c"},
		{CompanionID: "a", ModelName: "1:b", UserID: "c"},
		{CompanionID: "a", ModelName: "", UserID: "bc"},
		{CompanionID: "a", ModelName: "b", UserID: "c"},
		{CompanionID: "b", ModelName: "a", UserID: "c"},
		{CompanionID: "", ModelName: "ab", UserID: "c"},
	}

	seen := make(map[string]CompanionKey)
	for _, k := range keys {
		sk := k.StorageKey()
		if prev, ok := seen[sk]; ok {
			t.Errorf("keys %+v and %+v collide on %q", prev, k, sk)
		}
		seen[sk] = k
	}
}

func TestCompanionKey_Validate(t *testing.T) {
	tests := []struct {
		name    string
		key     CompanionKey
		wantErr bool
	}{
		{"complete", CompanionKey{CompanionID: "c", ModelName: "m", UserID: "u"}, false},
		{"missing user", CompanionKey{CompanionID: "c", ModelName: "m"}, true},
		{"missing companion", CompanionKey{ModelName: "m", UserID: "u"}, true},
		{"empty model is allowed", CompanionKey{CompanionID: "c", UserID: "u"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedKey) {
				t.Errorf("expected ErrMalformedKey, got %v", err)
			}
		})
	}
}

func TestPersonaNamespace(t *testing.T) {
	if got := PersonaNamespace("abc"); got != "abc.txt" {
		t.Errorf("expected 'abc.txt', got %q", got)
	}
}
