package flow

import (
	"strings"
	"testing"

	"github.com/VidaNova/AcolheBot/internal/models"
)

func TestNextMenuOptions(t *testing.T) {
	cases := []struct {
		input string
		want  models.State
	}{
		{"1", models.StateInteresseDiscipulado},
		{"2", models.StateInteresseNovoComec},
		{"3", models.StatePedidoOracao},
		{"4", models.StateHorarios},
		{"5", models.StateLinkWhatsApp},
		{"6", models.StateAtualizarCadastro},
		{"7", models.StateOutro},
	}
	for _, c := range cases {
		got, ok := Next(models.StateInicio, c.input)
		if !ok {
			t.Errorf("Next(INICIO, %q) = no transition, want %s", c.input, c.want)
			continue
		}
		if got != c.want {
			t.Errorf("Next(INICIO, %q) = %s, want %s", c.input, got, c.want)
		}
	}
}

func TestNextNoTransition(t *testing.T) {
	// INICIO has no default entry: free text falls through to the fallback chain
	if got, ok := Next(models.StateInicio, "quero saber dos cultos"); ok {
		t.Errorf("Next(INICIO, free text) = %s, want no transition", got)
	}
	// forwarding states have no table rows at all
	if got, ok := Next(models.StatePedidoOracao, "qualquer coisa"); ok {
		t.Errorf("Next(PEDIDO_ORACAO, text) = %s, want no transition", got)
	}
}

func TestNextDefaultFallback(t *testing.T) {
	for _, state := range []models.State{
		models.StateInteresseDiscipulado,
		models.StateInteresseNovoComec,
		models.StateHorarios,
		models.StateLinkWhatsApp,
	} {
		got, ok := Next(state, "qualquer resposta")
		if !ok || got != models.StateFim {
			t.Errorf("Next(%s, free text) = (%s, %v), want (FIM, true)", state, got, ok)
		}
	}
	got, ok := Next(models.StateFinalizarAtualizacao, "ok")
	if !ok || got != models.StateInicio {
		t.Errorf("Next(FINALIZAR_ATUALIZACAO, ok) = (%s, %v), want (INICIO, true)", got, ok)
	}
}

func TestNextWizardChoices(t *testing.T) {
	for _, state := range []models.State{models.StateAtualizarCadastro, models.StateAguardandoAtualizacao} {
		got, _ := Next(state, "3")
		if got != models.StateAtualizarDataNascimento {
			t.Errorf("Next(%s, 3) = %s, want ATUALIZAR_DATA_NASCIMENTO", state, got)
		}
		got, _ = Next(state, "finalizar")
		if got != models.StateFinalizarAtualizacao {
			t.Errorf("Next(%s, finalizar) = %s, want FINALIZAR_ATUALIZACAO", state, got)
		}
		got, _ = Next(state, "alguma coisa")
		if got != models.StateAguardandoAtualizacao {
			t.Errorf("Next(%s, invalid choice) = %s, want AGUARDANDO_ATUALIZACAO", state, got)
		}
	}
}

func TestEveryTransitionTargetHasTemplate(t *testing.T) {
	for state, row := range Transitions {
		for input, next := range row {
			if Template(next) == "" {
				t.Errorf("transition %s[%q] -> %s has no template", state, input, next)
			}
		}
	}
}

func TestRenderWithName(t *testing.T) {
	got := Render("Oi {nome}, tudo bem?", "Maria")
	if got != "Oi Maria, tudo bem?" {
		t.Errorf("Render with name = %q", got)
	}
}

func TestRenderWithoutName(t *testing.T) {
	cases := map[string]string{
		"Que ótimo, {nome}! Vamos lá.": "Que ótimo! Vamos lá.",
		"Oi {nome}! Como posso ajudar": "Oi! Como posso ajudar",
		"{nome}, pode escrever":        ", pode escrever",
	}
	for in, want := range cases {
		if got := Render(in, ""); got != want {
			t.Errorf("Render(%q, \"\") = %q, want %q", in, got, want)
		}
	}
	if got := Render("Oi {nome}!", ""); strings.Contains(got, NamePlaceholder) {
		t.Errorf("Render left placeholder in %q", got)
	}
}

func TestWelcomeBackTemplateDistinctFromMenu(t *testing.T) {
	fim := RenderState(models.StateFim, "Maria")
	inicio := RenderState(models.StateInicio, "Maria")
	if fim == inicio {
		t.Error("FIM re-engagement template must differ from the INICIO template")
	}
	if !strings.Contains(fim, MenuBody) {
		t.Error("FIM re-engagement template must re-list the main menu")
	}
}
