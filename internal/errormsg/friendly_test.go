package errormsg

import (
	"errors"
	"testing"
)

func TestFriendly(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, DefaultMessage},
		{"known phrase", errors.New("dial tcp: connection refused"), "Unable to connect. Please check your internet connection."},
		{"case insensitive", errors.New("TOKEN IS EXPIRED"), "Your session has expired. Please sign in again."},
		{"constraint text hidden", errors.New(`duplicate key value violates unique constraint "job_invoices_job_id_key"`), DefaultMessage},
		{"json error rewritten", errors.New("json: cannot unmarshal string into Go value"), "Unable to save changes. Please try again."},
		{"unknown error", errors.New("weird internal thing"), DefaultMessage},
	}
	for _, c := range cases {
		if got := Friendly(c.err, ""); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFriendly_CustomFallback(t *testing.T) {
	got := Friendly(errors.New("weird internal thing"), "Could not lock the invoice.")
	if got != "Could not lock the invoice." {
		t.Errorf("fallback not used: %q", got)
	}
}
