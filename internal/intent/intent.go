// Package intent implements the stateless inbound-text classifiers.
//
// Every classifier is a pure function over the normalized form of the text;
// ordering between classifiers is the dispatcher's responsibility.
package intent

import (
	"regexp"
	"strings"

	"github.com/VidaNova/AcolheBot/internal/normalize"
)

// greetings is the closed set of greeting phrases, matched as substrings of
// the normalized text.
var greetings = []string{
	"bom dia",
	"boa tarde",
	"boa noite",
	"ola",
	"oi",
	"opa",
	"e ai",
	"paz do senhor",
	"a paz",
	"shalom",
}

// gratitudes is the closed set of gratitude phrases.
var gratitudes = []string{
	"obrigado",
	"obrigada",
	"agradecido",
	"agradecida",
	"agradeco",
	"muito bom",
	"valeu",
	"deus abencoe",
	"amem",
}

// MinistryEntry maps a keyword to its canned informational response.
type MinistryEntry struct {
	Keyword  string
	Response string
}

// Ministries is the ordered keyword table for ministry inquiries. The first
// matching entry wins; the order here is a tie-break contract.
var Ministries = []MinistryEntry{
	{"jovens", "O Ministério de Jovens se reúne todo sábado às 19h no salão principal. Chega junto! 🙌"},
	{"louvor", "O Ministério de Louvor ensaia às quintas, 20h. Fale com o líder Marcos na recepção para participar. 🎶"},
	{"casais", "O Ministério de Casais tem encontros mensais, sempre no segundo sábado. A secretaria passa as próximas datas. 💑"},
	{"mulheres", "O Ministério de Mulheres se encontra às terças, 19h30, na sala 2."},
	{"homens", "O Ministério de Homens se reúne na primeira sexta do mês, 20h."},
	{"criancas", "O Ministério Infantil acontece durante os cultos de domingo, com equipe dedicada para cada faixa etária. 👧👦"},
	{"adolescentes", "O Ministério de Adolescentes se reúne aos sábados às 17h."},
	{"intercessao", "O Ministério de Intercessão ora toda quarta às 6h da manhã. Todos são bem-vindos. 🙏"},
	{"acao social", "A Ação Social recebe doações de alimentos e roupas na secretaria, de segunda a sexta, das 9h às 17h."},
	{"midia", "O Ministério de Mídia cuida das transmissões. Interessados podem falar com a equipe após o culto."},
}

var birthdateRegex = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// IsGreeting reports whether the text contains any greeting phrase.
func IsGreeting(text string) bool {
	return containsAny(normalize.Text(text), greetings)
}

// IsGratitude reports whether the text contains any gratitude phrase.
func IsGratitude(text string) bool {
	return containsAny(normalize.Text(text), gratitudes)
}

// MatchMinistry returns the canned response for the first ministry keyword
// found in the text, or ("", false) when none matches. Besides the standard
// normalization, "ç" is folded to "c", and each keyword also matches with a
// trailing "s" stripped to catch singular/plural variations.
func MatchMinistry(text string) (string, bool) {
	folded := strings.ReplaceAll(normalize.Text(text), "ç", "c")
	for _, entry := range Ministries {
		if strings.Contains(folded, entry.Keyword) {
			return entry.Response, true
		}
		if stem := strings.TrimSuffix(entry.Keyword, "s"); stem != entry.Keyword && strings.Contains(folded, stem) {
			return entry.Response, true
		}
	}
	return "", false
}

// IsValidBirthdate reports whether the text matches the literal DD/MM/YYYY
// pattern. Calendar validity is deliberately not checked.
func IsValidBirthdate(text string) bool {
	return birthdateRegex.MatchString(strings.TrimSpace(text))
}

func containsAny(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
