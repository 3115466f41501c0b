package middleware

import (
	"testing"
	"time"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"strong", "Str0ngPassw0rd", true},
		{"too short", "Ab1", false},
		{"no uppercase", "weakpassword1", false},
		{"no lowercase", "WEAKPASSWORD1", false},
		{"no digit", "WeakPassword", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, problems := ValidatePasswordStrength(tt.password)
			if ok != tt.wantOK {
				t.Errorf("ValidatePasswordStrength(%q) = %v (%v), want %v", tt.password, ok, problems, tt.wantOK)
			}
			if !ok && len(problems) == 0 {
				t.Error("rejection must name at least one problem")
			}
		})
	}
}

func TestRateLimiterReusesLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter()

	first := rl.GetLimiterWithConfig("a", 1, 1)
	second := rl.GetLimiterWithConfig("a", 1, 1)
	if first != second {
		t.Fatal("same key must return the same limiter")
	}

	other := rl.GetLimiterWithConfig("b", 1, 1)
	if first == other {
		t.Fatal("different keys must not share a limiter")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()
	rl.GetLimiterWithConfig("stale", 1, 1)
	rl.lastSeen["stale"] = time.Now().Add(-2 * time.Hour)

	rl.Cleanup()

	rl.mutex.RLock()
	_, exists := rl.limiters["stale"]
	rl.mutex.RUnlock()
	if exists {
		t.Fatal("idle limiter should have been removed")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken failed: %v", err)
	}
	if len(a) != 64 { // hex doubles the byte length
		t.Fatalf("token length = %d, want 64", len(a))
	}
	b, _ := GenerateSecureToken(32)
	if a == b {
		t.Fatal("two tokens must not collide")
	}
}
