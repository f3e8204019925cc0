package intent

import "testing"

func TestIsGreeting(t *testing.T) {
	greetings := []string{"Bom dia!", "BOA TARDE", "olá, tudo bem?", "A paz do Senhor"}
	for _, in := range greetings {
		if !IsGreeting(in) {
			t.Errorf("IsGreeting(%q) = false, want true", in)
		}
	}
	if IsGreeting("3") {
		t.Error("IsGreeting(\"3\") = true, want false")
	}
	if IsGreeting("") {
		t.Error("IsGreeting(\"\") = true, want false")
	}
}

func TestIsGratitude(t *testing.T) {
	gratitudes := []string{"Obrigado!", "muito obrigada", "Valeu demais", "Deus abençoe vocês", "Amém"}
	for _, in := range gratitudes {
		if !IsGratitude(in) {
			t.Errorf("IsGratitude(%q) = false, want true", in)
		}
	}
	if IsGratitude("quero saber dos cultos") {
		t.Error("IsGratitude(culto question) = true, want false")
	}
}

func TestMatchMinistryJovens(t *testing.T) {
	resp, ok := MatchMinistry("quero saber do ministério jovens")
	if !ok {
		t.Fatal("MatchMinistry(ministério jovens) = no match, want jovens response")
	}
	if resp != Ministries[0].Response {
		t.Errorf("MatchMinistry returned %q, want jovens response %q", resp, Ministries[0].Response)
	}
}

func TestMatchMinistryNoMatch(t *testing.T) {
	if resp, ok := MatchMinistry("ministerios"); ok {
		t.Errorf("MatchMinistry(\"ministerios\") matched %q, want no match", resp)
	}
	if _, ok := MatchMinistry("como faço para dizimar"); ok {
		t.Error("MatchMinistry(dízimo question) matched, want no match")
	}
}

func TestMatchMinistrySingularAndCedilla(t *testing.T) {
	// trailing "s" stripped from the keyword catches the singular form
	if _, ok := MatchMinistry("tem algo para adolescente aqui?"); !ok {
		t.Error("MatchMinistry(singular adolescente) = no match, want match")
	}
	// ç folds to c
	resp, ok := MatchMinistry("quero ajudar na ação social")
	if !ok {
		t.Fatal("MatchMinistry(ação social) = no match, want match")
	}
	var want string
	for _, entry := range Ministries {
		if entry.Keyword == "acao social" {
			want = entry.Response
		}
	}
	if resp != want {
		t.Errorf("MatchMinistry(ação social) = %q, want %q", resp, want)
	}
}

func TestMatchMinistryFirstEntryWins(t *testing.T) {
	// both jovens and louvor appear; table order decides
	resp, ok := MatchMinistry("louvor e jovens")
	if !ok {
		t.Fatal("MatchMinistry(louvor e jovens) = no match, want match")
	}
	if resp != Ministries[0].Response {
		t.Errorf("MatchMinistry returned %q, want first-entry response %q", resp, Ministries[0].Response)
	}
}

func TestIsValidBirthdate(t *testing.T) {
	valid := []string{"25/12/1990", "01/01/2000", " 31/07/1985 "}
	for _, in := range valid {
		if !IsValidBirthdate(in) {
			t.Errorf("IsValidBirthdate(%q) = false, want true", in)
		}
	}
	invalid := []string{"1990-12-25", "25/12/90", "25.12.1990", "aniversário", ""}
	for _, in := range invalid {
		if IsValidBirthdate(in) {
			t.Errorf("IsValidBirthdate(%q) = true, want false", in)
		}
	}
}
