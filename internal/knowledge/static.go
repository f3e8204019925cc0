package knowledge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/VidaNova/AcolheBot/internal/models"
	"github.com/VidaNova/AcolheBot/internal/normalize"
)

// Entry is one curated question/answer pair.
type Entry struct {
	Question string
	Answer   string
}

// DefaultEntries seeds the static base with the questions the secretariat
// answers most often.
var DefaultEntries = []Entry{
	{"qual o horario dos cultos", "Nossos cultos são aos domingos às 10h e 18h30, quartas às 20h e sábados (jovens) às 19h. ⛪"},
	{"onde fica a igreja", "Estamos na Rua das Palmeiras, 123 - Centro. Tem estacionamento próprio e fica a duas quadras do terminal. 📍"},
	{"como ser batizado", "Os batismos acontecem a cada dois meses. É preciso participar da turma de preparação, que abre inscrições na secretaria. 💧"},
	{"como dizimar ofertar", "Você pode contribuir durante os cultos ou por Pix usando a chave financeiro@vidanova.org. Deus abençoe sua generosidade! 🙏"},
	{"tem celula grupo pequeno", "Temos células em vários bairros durante a semana. A secretaria te conecta com a célula mais próxima da sua casa. 🏠"},
	{"aula criancas escola dominical", "A escola dominical das crianças acontece aos domingos, às 9h, com turmas por idade."},
	{"aconselhamento pastoral", "O aconselhamento pastoral é agendado pela secretaria, de segunda a sexta, das 9h às 17h."},
}

// StaticBase is an offline Service over a fixed set of entries. Confidence
// is the share of query tokens found in the matched entry's question.
type StaticBase struct {
	entries []Entry
}

// NewStaticBase creates a static base. With no entries the default set is used.
func NewStaticBase(entries ...Entry) *StaticBase {
	if len(entries) == 0 {
		entries = DefaultEntries
	}
	return &StaticBase{entries: entries}
}

// Answer scores every entry against the query and returns the best one.
func (b *StaticBase) Answer(ctx context.Context, query string) (models.KnowledgeAnswer, error) {
	tokens := strings.Fields(normalize.Text(query))
	if len(tokens) == 0 {
		return models.KnowledgeAnswer{}, nil
	}

	var best models.KnowledgeAnswer
	for _, entry := range b.entries {
		questionTokens := strings.Fields(normalize.Text(entry.Question))
		score := overlap(tokens, questionTokens)
		if score > best.Confidence {
			best = models.KnowledgeAnswer{Text: entry.Answer, Confidence: score}
		}
	}

	slog.Debug("StaticBase answered", "query_tokens", len(tokens), "confidence", best.Confidence)
	return best, nil
}

// overlap returns the fraction of query tokens present in the entry tokens.
// Tokens shorter than three runes are skipped so articles and prepositions
// do not inflate the score.
func overlap(query, entry []string) float64 {
	indexed := make(map[string]bool, len(entry))
	for _, t := range entry {
		indexed[t] = true
	}
	var considered, matched int
	for _, t := range query {
		if len([]rune(t)) < 3 {
			continue
		}
		considered++
		if indexed[t] {
			matched++
		}
	}
	if considered == 0 {
		return 0
	}
	return float64(matched) / float64(considered)
}
