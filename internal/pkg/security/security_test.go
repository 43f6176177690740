package security

import (
	"strings"
	"testing"
)

func TestValidatePaperID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "paper_001", false},
		{"doi-like", "10.1234-abc.12", false},
		{"single char", "p", false},
		{"empty", "", true},
		{"leading dot", ".hidden", true},
		{"spaces", "paper 001", true},
		{"slash", "papers/001", true},
		{"too long", strings.Repeat("a", MaxPaperIDLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaperID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaperID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	if err := ValidateWorkers(8); err != nil {
		t.Errorf("ValidateWorkers(8) = %v", err)
	}
	if err := ValidateWorkers(0); err != nil {
		t.Errorf("ValidateWorkers(0) = %v, zero means default", err)
	}
	if err := ValidateWorkers(-1); err == nil {
		t.Error("negative workers accepted")
	}
	if err := ValidateWorkers(MaxWorkers + 1); err == nil {
		t.Error("oversized workers accepted")
	}
}

func TestCheckAPIKey(t *testing.T) {
	if !CheckAPIKey("", "anything") {
		t.Error("empty configured key should disable the check")
	}
	if !CheckAPIKey("secret", "secret") {
		t.Error("matching key rejected")
	}
	if CheckAPIKey("secret", "wrong") {
		t.Error("wrong key accepted")
	}
	if CheckAPIKey("secret", "") {
		t.Error("missing key accepted")
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("supersecretkey"); got != "****tkey" {
		t.Errorf("MaskSecret() = %s", got)
	}
	if got := MaskSecret("abc"); got != "****" {
		t.Errorf("MaskSecret(short) = %s", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "workers", Value: 999, Constraint: "too large"}
	if !strings.Contains(err.Error(), "workers") || !strings.Contains(err.Error(), "999") {
		t.Errorf("Error() = %s", err.Error())
	}
}
