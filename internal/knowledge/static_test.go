package knowledge

import (
	"context"
	"testing"
)

func TestStaticBaseAnswersKnownQuestion(t *testing.T) {
	base := NewStaticBase()

	answer, err := base.Answer(context.Background(), "Qual o horário dos cultos?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Text == "" {
		t.Fatal("Answer returned no text for a seeded question")
	}
	if answer.Confidence < 0.5 {
		t.Errorf("confidence = %v, want a strong match for a near-verbatim question", answer.Confidence)
	}
}

func TestStaticBaseUnknownQuestionScoresLow(t *testing.T) {
	base := NewStaticBase()

	answer, err := base.Answer(context.Background(), "xyzzy plugh foobar")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Confidence != 0 {
		t.Errorf("confidence = %v for gibberish, want 0", answer.Confidence)
	}
}

func TestStaticBaseEmptyQuery(t *testing.T) {
	base := NewStaticBase()

	answer, err := base.Answer(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Text != "" || answer.Confidence != 0 {
		t.Errorf("empty query answer = %+v, want zero value", answer)
	}
}

func TestStaticBaseShortTokensIgnored(t *testing.T) {
	base := NewStaticBase(Entry{Question: "um de a o", Answer: "nunca"})

	answer, err := base.Answer(context.Background(), "um de a o")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	// every token is shorter than three runes, so nothing is scored
	if answer.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 when only stopword-length tokens match", answer.Confidence)
	}
}

func TestStaticBaseCustomEntriesWinByOverlap(t *testing.T) {
	base := NewStaticBase(
		Entry{Question: "horario culto domingo", Answer: "domingo"},
		Entry{Question: "endereco igreja centro", Answer: "centro"},
	)

	answer, err := base.Answer(context.Background(), "qual endereco da igreja?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Text != "centro" {
		t.Errorf("Answer picked %q, want the higher-overlap entry", answer.Text)
	}
}
