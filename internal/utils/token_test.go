package utils

import "testing"

func TestGenerateLoginToken(t *testing.T) {
	token, hash, err := GenerateLoginToken()
	if err != nil {
		t.Fatalf("GenerateLoginToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}
	if hash != HashLoginToken(token) {
		t.Error("returned hash does not match HashLoginToken of the raw token")
	}
	if token == hash {
		t.Error("raw token and stored hash must differ")
	}

	again, _, err := GenerateLoginToken()
	if err != nil {
		t.Fatalf("GenerateLoginToken: %v", err)
	}
	if token == again {
		t.Error("two generated tokens must not collide")
	}
}
