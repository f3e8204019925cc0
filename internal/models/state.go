// Package models defines conversation state types for AcolheBot.
package models

// State identifies the visitor's position in the conversation flow.
//
// The string values are persisted as-is; their spelling is a compatibility
// contract with previously stored conversation states and must not change.
type State string

const (
	// StatePedirNome is the pseudo-state used while waiting for an
	// unregistered visitor to send their name.
	StatePedirNome State = "PEDIR_NOME"
	// StateInicio is the main menu state.
	StateInicio State = "INICIO"
	// StateInteresseDiscipulado is reached after menu option 1.
	StateInteresseDiscipulado State = "INTERESSE_DISCIPULADO"
	// StateInteresseNovoComec is reached after menu option 2.
	StateInteresseNovoComec State = "INTERESSE_NOVO_COMEC"
	// StatePedidoOracao collects a prayer request to forward to intercessors.
	StatePedidoOracao State = "PEDIDO_ORACAO"
	// StateHorarios shows service times.
	StateHorarios State = "HORARIOS"
	// StateLinkWhatsApp shares the community group link.
	StateLinkWhatsApp State = "LINK_WHATSAPP"
	// StateOutro collects a free-form message to forward to the secretariat.
	StateOutro State = "OUTRO"

	// Profile update wizard states.
	StateAtualizarCadastro       State = "ATUALIZAR_CADASTRO"
	StateAtualizarNome           State = "ATUALIZAR_NOME"
	StateAtualizarEmail          State = "ATUALIZAR_EMAIL"
	StateAtualizarDataNascimento State = "ATUALIZAR_DATA_NASCIMENTO"
	StateAtualizarCidade         State = "ATUALIZAR_CIDADE"
	StateAtualizarGenero         State = "ATUALIZAR_GENERO"
	StateAtualizarEstadoCivil    State = "ATUALIZAR_ESTADO_CIVIL"
	StateAguardandoAtualizacao   State = "AGUARDANDO_ATUALIZACAO"
	StateFinalizarAtualizacao    State = "FINALIZAR_ATUALIZACAO"

	// StateFim is the terminal state; any later message re-engages to INICIO.
	StateFim State = "FIM"
)

// Transient labels returned in dispatch results for telemetry. They are
// never persisted as a visitor's conversation state.
const (
	LabelMinisterio    State = "MINISTERIO"
	LabelSaudacao      State = "SAUDACAO"
	LabelAgradecimento State = "AGRADECIMENTO"
)

// PersistentStates lists every state the dispatcher may write to the store.
var PersistentStates = []State{
	StatePedirNome,
	StateInicio,
	StateInteresseDiscipulado,
	StateInteresseNovoComec,
	StatePedidoOracao,
	StateHorarios,
	StateLinkWhatsApp,
	StateOutro,
	StateAtualizarCadastro,
	StateAtualizarNome,
	StateAtualizarEmail,
	StateAtualizarDataNascimento,
	StateAtualizarCidade,
	StateAtualizarGenero,
	StateAtualizarEstadoCivil,
	StateAguardandoAtualizacao,
	StateFinalizarAtualizacao,
	StateFim,
}

// IsPersistent reports whether s is a state that may be stored, as opposed
// to a transient classification label.
func (s State) IsPersistent() bool {
	for _, p := range PersistentStates {
		if s == p {
			return true
		}
	}
	return false
}

// TransitionStat records a completed state transition for reporting.
type TransitionStat struct {
	Phone     string `json:"phone"`
	FromState State  `json:"from_state"`
	ToState   State  `json:"to_state"`
	Time      int64  `json:"time"`
}
