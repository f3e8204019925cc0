package normalize

import "testing"

func TestTextRemovesDiacritics(t *testing.T) {
	cases := map[string]string{
		"Olá":             "ola",
		"ORAÇÃO":          "oracao",
		"  Bom   Dia  ":   "bom dia",
		"ministério":   "ministerio",
		"não  entendi": "nao entendi",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{"Olá, tudo BEM?", "  oração   por favor ", "já normalizado", ""}
	for _, in := range inputs {
		once := Text(in)
		twice := Text(once)
		if once != twice {
			t.Errorf("Text not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTextEmpty(t *testing.T) {
	if got := Text("   "); got != "" {
		t.Errorf("Text(whitespace) = %q, want empty", got)
	}
}

func TestPhoneStripsFormattingAndCountryCode(t *testing.T) {
	cases := map[string]string{
		"+55 (11) 99999-8888": "11999998888",
		"5511999998888":       "11999998888",
		"11999998888":         "11999998888",
		// too short for the country-code strip to apply
		"5599887766": "5599887766",
		"whatsapp:+5511988887777": "11988887777",
		"": "",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Errorf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstName(t *testing.T) {
	cases := map[string]string{
		"Maria Silva":       "Maria",
		"  João  ":          "João",
		"Ana Paula Ribeiro": "Ana",
		"":                  "",
		"   ":               "",
	}
	for in, want := range cases {
		if got := FirstName(in); got != want {
			t.Errorf("FirstName(%q) = %q, want %q", in, got, want)
		}
	}
}
