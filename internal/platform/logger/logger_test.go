package logger

import "testing"

func TestScrubberRedactsSecretsAndHashesIdentifiers(t *testing.T) {
	s := newScrubber([]Option{WithHashSalt("salt")})

	out := s.kvs([]interface{}{
		"stripe_signature", "t=1,v1=abc",
		"user_id", "u1",
		"upload", "https://acct.blob.core.windows.net/c/b?sp=c&sig=xyz",
		"project_id", "p1",
	})

	if got := out[1]; got != "[REDACTED]" {
		t.Fatalf("signature: want=[REDACTED] got=%v", got)
	}
	hashed, _ := out[3].(string)
	if hashed == "u1" || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id: want salted hash got=%q", hashed)
	}
	if got := out[5]; got != "[REDACTED]" {
		t.Fatalf("signed url: want=[REDACTED] got=%v", got)
	}
	if got := out[7]; got != "p1" {
		t.Fatalf("project_id: want=p1 got=%v", got)
	}
}

func TestScrubberDisabledPassesThrough(t *testing.T) {
	s := newScrubber([]Option{WithRedaction(false)})
	in := []interface{}{"password", "hunter2"}
	out := s.kvs(in)
	if out[1] != "hunter2" {
		t.Fatalf("want passthrough got=%v", out[1])
	}
}

func TestScrubberKeepsDanglingKey(t *testing.T) {
	s := newScrubber(nil)
	out := s.kvs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key lost: %v", out)
	}
}
