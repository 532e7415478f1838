package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		key     string
		payload string
	}{
		{"unique with payload", "\fvervoerder|postnl", "vervoerder", "postnl"},
		{"unique only", "\fterug_naar_start", "terug_naar_start", ""},
		{"raw data without prefix", "vervoerder|dhl", "vervoerder", "dhl"},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if key != tc.key || payload != tc.payload {
			t.Fatalf("%s: got (%q, %q), want (%q, %q)", tc.name, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	if key, payload := ParseCallbackData(nil); key != "" || payload != "" {
		t.Fatalf("nil callback parsed to (%q, %q)", key, payload)
	}
}
