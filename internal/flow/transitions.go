// Package flow defines the table-driven conversation state machine: the
// transition table and the per-state reply templates.
package flow

import "github.com/VidaNova/AcolheBot/internal/models"

// DefaultToken is the sentinel input matching any text without an exact entry.
const DefaultToken = "default"

// wizard field choices shared by the two field-selection states.
var wizardChoices = map[string]models.State{
	"1":         models.StateAtualizarNome,
	"2":         models.StateAtualizarEmail,
	"3":         models.StateAtualizarDataNascimento,
	"4":         models.StateAtualizarCidade,
	"5":         models.StateAtualizarGenero,
	"6":         models.StateAtualizarEstadoCivil,
	"finalizar": models.StateFinalizarAtualizacao,
	DefaultToken: models.StateAguardandoAtualizacao,
}

// Transitions maps (current state, normalized input) to the next state.
// Lookup is exact input first, then the DefaultToken entry; absence of both
// means "no transition" and routes the turn to the fallback chain.
var Transitions = map[models.State]map[string]models.State{
	models.StateInicio: {
		"1": models.StateInteresseDiscipulado,
		"2": models.StateInteresseNovoComec,
		"3": models.StatePedidoOracao,
		"4": models.StateHorarios,
		"5": models.StateLinkWhatsApp,
		"6": models.StateAtualizarCadastro,
		"7": models.StateOutro,
	},
	models.StateInteresseDiscipulado: {
		DefaultToken: models.StateFim,
	},
	models.StateInteresseNovoComec: {
		DefaultToken: models.StateFim,
	},
	models.StateHorarios: {
		DefaultToken: models.StateFim,
	},
	models.StateLinkWhatsApp: {
		DefaultToken: models.StateFim,
	},
	models.StateAtualizarCadastro:     wizardChoices,
	models.StateAguardandoAtualizacao: wizardChoices,
	models.StateFinalizarAtualizacao: {
		DefaultToken: models.StateInicio,
	},
}

// Next resolves the transition for the given state and normalized input.
// The second return value is false when neither the input nor a default
// entry exists for the state.
func Next(current models.State, input string) (models.State, bool) {
	row, ok := Transitions[current]
	if !ok {
		return "", false
	}
	if next, ok := row[input]; ok {
		return next, true
	}
	if next, ok := row[DefaultToken]; ok {
		return next, true
	}
	return "", false
}
