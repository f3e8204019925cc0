package util

import (
	"reflect"
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"talvez", true, true},
		{"talvez", false, false},
	}
	for _, c := range cases {
		t.Setenv("ACOLHEBOT_TEST_BOOL", c.value)
		if got := ParseBoolEnv("ACOLHEBOT_TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseFloatEnv(t *testing.T) {
	t.Setenv("ACOLHEBOT_TEST_FLOAT", "0.4")
	if got := ParseFloatEnv("ACOLHEBOT_TEST_FLOAT", 0.25); got != 0.4 {
		t.Errorf("ParseFloatEnv = %v, want 0.4", got)
	}
	t.Setenv("ACOLHEBOT_TEST_FLOAT", "quase um")
	if got := ParseFloatEnv("ACOLHEBOT_TEST_FLOAT", 0.25); got != 0.25 {
		t.Errorf("ParseFloatEnv with invalid value = %v, want default 0.25", got)
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("ACOLHEBOT_TEST_DURATION", "500ms")
	if got := ParseDurationEnv("ACOLHEBOT_TEST_DURATION", 2*time.Second); got != 500*time.Millisecond {
		t.Errorf("ParseDurationEnv = %v, want 500ms", got)
	}
	t.Setenv("ACOLHEBOT_TEST_DURATION", "logo")
	if got := ParseDurationEnv("ACOLHEBOT_TEST_DURATION", 2*time.Second); got != 2*time.Second {
		t.Errorf("ParseDurationEnv with invalid value = %v, want default 2s", got)
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" 11911111111 , 11922222222 ", []string{"11911111111", "11922222222"}},
		{"um,,dois,", []string{"um", "dois"}},
		{"", nil},
		{"   ", nil},
	}
	for _, c := range cases {
		if got := SplitList(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitList(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
