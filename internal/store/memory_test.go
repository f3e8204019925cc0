package store

import (
	"errors"
	"testing"

	"github.com/VidaNova/AcolheBot/internal/models"
)

func TestInMemoryStateRoundTrip(t *testing.T) {
	st := NewInMemoryStore()

	state, err := st.GetState("11999998888")
	if err != nil {
		t.Fatalf("GetState on empty store failed: %v", err)
	}
	if state != "" {
		t.Fatalf("GetState on empty store = %q, want empty", state)
	}

	if err := st.SetState("11999998888", models.StateInicio); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	state, _ = st.GetState("11999998888")
	if state != models.StateInicio {
		t.Errorf("GetState = %s, want INICIO", state)
	}
}

func TestInMemoryVisitorLifecycle(t *testing.T) {
	st := NewInMemoryStore()

	if v, err := st.GetVisitor("11999998888"); err != nil || v != nil {
		t.Fatalf("GetVisitor on empty store = (%v, %v), want (nil, nil)", v, err)
	}

	if err := st.CreateVisitor("11999998888", "Maria Silva"); err != nil {
		t.Fatalf("CreateVisitor failed: %v", err)
	}
	// re-creation keeps the original profile
	if err := st.CreateVisitor("11999998888", "Outro Nome"); err != nil {
		t.Fatalf("duplicate CreateVisitor failed: %v", err)
	}
	v, _ := st.GetVisitor("11999998888")
	if v == nil || v.Name != "Maria Silva" {
		t.Fatalf("visitor after duplicate create = %+v, want original name", v)
	}

	if err := st.UpdateVisitorField("11999998888", models.FieldCidade, "Campinas"); err != nil {
		t.Fatalf("UpdateVisitorField failed: %v", err)
	}
	v, _ = st.GetVisitor("11999998888")
	if v.City != "Campinas" {
		t.Errorf("visitor city = %q, want Campinas", v.City)
	}

	if err := st.UpdateVisitorField("11999998888", models.VisitorField("apelido"), "x"); !errors.Is(err, models.ErrUnknownField) {
		t.Errorf("UpdateVisitorField with unknown field = %v, want ErrUnknownField", err)
	}
	if err := st.UpdateVisitorField("11000000000", models.FieldNome, "x"); !errors.Is(err, models.ErrVisitorNotFound) {
		t.Errorf("UpdateVisitorField for missing visitor = %v, want ErrVisitorNotFound", err)
	}
}

func TestInMemoryVisitorCopyIsolation(t *testing.T) {
	st := NewInMemoryStore()
	st.CreateVisitor("11999998888", "Maria Silva")

	v, _ := st.GetVisitor("11999998888")
	v.Name = "mutated"

	again, _ := st.GetVisitor("11999998888")
	if again.Name != "Maria Silva" {
		t.Errorf("mutating a returned visitor leaked into the store: %q", again.Name)
	}
}

func TestInMemoryMarkProviderMessage(t *testing.T) {
	st := NewInMemoryStore()

	first, err := st.MarkProviderMessage("SM123")
	if err != nil || !first {
		t.Fatalf("first MarkProviderMessage = (%v, %v), want (true, nil)", first, err)
	}
	second, err := st.MarkProviderMessage("SM123")
	if err != nil || second {
		t.Fatalf("second MarkProviderMessage = (%v, %v), want (false, nil)", second, err)
	}
	other, _ := st.MarkProviderMessage("SM124")
	if !other {
		t.Error("a distinct provider id must be first-seen")
	}
}

func TestInMemoryLogs(t *testing.T) {
	st := NewInMemoryStore()

	st.LogMessage(models.Message{Phone: "11999998888", Body: "oi", Direction: models.DirectionReceived})
	st.LogMessage(models.Message{Phone: "11999998888", Body: "menu", Direction: models.DirectionSent})
	st.LogStat(models.TransitionStat{Phone: "11999998888", FromState: models.StateInicio, ToState: models.StateHorarios})
	st.LogUnansweredQuestion("11999998888", "qual a senha do wifi?")

	if got := len(st.Messages()); got != 2 {
		t.Errorf("Messages() length = %d, want 2", got)
	}
	if got := len(st.Stats()); got != 1 {
		t.Errorf("Stats() length = %d, want 1", got)
	}
	unanswered := st.UnansweredQuestions()
	if len(unanswered) != 1 || unanswered[0].Body != "qual a senha do wifi?" {
		t.Errorf("UnansweredQuestions() = %+v, want the logged question", unanswered)
	}
}
