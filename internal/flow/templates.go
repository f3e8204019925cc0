package flow

import (
	"strings"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// NamePlaceholder is resolved to the visitor's first name at render time.
const NamePlaceholder = "{nome}"

// MenuBody lists the main menu options, shared by several templates.
const MenuBody = "1️⃣ Quero conhecer o discipulado\n" +
	"2️⃣ Quero participar do Novo Começo\n" +
	"3️⃣ Quero deixar um pedido de oração\n" +
	"4️⃣ Horários dos cultos\n" +
	"5️⃣ Entrar no grupo do WhatsApp\n" +
	"6️⃣ Atualizar meu cadastro\n" +
	"7️⃣ Falar com a secretaria"

// templates holds the canned response sent when a visitor enters each state.
var templates = map[models.State]string{
	models.StatePedirNome: "Olá! Que alegria receber sua mensagem. 😊 Antes de continuarmos, como você se chama?",

	models.StateInicio: "Oi {nome}! Aqui é o assistente da Igreja Vida Nova. Como posso ajudar?\n\n" + MenuBody +
		"\n\nResponda com o número da opção desejada.",

	models.StateInteresseDiscipulado: "Que ótimo, {nome}! 🙌 O discipulado acontece em encontros semanais de uma hora, " +
		"presenciais ou online. Um discipulador vai entrar em contato com você para combinar o melhor horário.",

	models.StateInteresseNovoComec: "O Novo Começo é nosso curso para quem está chegando agora, {nome}. 🌱 " +
		"São 4 encontros aos domingos, logo após o culto da manhã. Sua vaga já está garantida, é só aparecer!",

	models.StatePedidoOracao: "{nome}, pode escrever seu pedido de oração com suas palavras. 🙏 " +
		"Nossa equipe de intercessão vai orar por você.",

	models.StateHorarios: "Nossos cultos, {nome}:\n\n⛪ Domingo: 10h e 18h30\n🙏 Quarta (oração): 20h\n🔥 Sábado (jovens): 19h\n\n" +
		"Será uma alegria ter você conosco!",

	models.StateLinkWhatsApp: "Entre no nosso grupo da comunidade, {nome}: https://chat.whatsapp.com/IgrejaVidaNova 📲",

	models.StateOutro: "Pode escrever sua mensagem, {nome}. Vou encaminhar para a secretaria e eles retornam em breve. ✍️",

	models.StateAtualizarCadastro: "Vamos atualizar seu cadastro, {nome}. Qual campo você quer alterar?\n\n" +
		"1️⃣ Nome\n2️⃣ E-mail\n3️⃣ Data de nascimento\n4️⃣ Cidade\n5️⃣ Gênero\n6️⃣ Estado civil\n\n" +
		"Digite *finalizar* quando terminar.",

	models.StateAtualizarNome:           "Digite seu nome completo:",
	models.StateAtualizarEmail:          "Digite seu e-mail:",
	models.StateAtualizarDataNascimento: "Digite sua data de nascimento no formato DD/MM/AAAA:",
	models.StateAtualizarCidade:         "Digite sua cidade:",
	models.StateAtualizarGenero:         "Digite seu gênero:",
	models.StateAtualizarEstadoCivil:    "Digite seu estado civil:",

	models.StateAguardandoAtualizacao: "Não entendi. 😅 Escolha um número de 1 a 6 para o campo que deseja alterar, " +
		"ou digite *finalizar* para encerrar a atualização.",

	models.StateFinalizarAtualizacao: "Prontinho, {nome}! Seu cadastro foi atualizado. Obrigado por manter seus dados em dia. ✅",

	models.StateFim: "Que bom ter você de volta, {nome}! 👋 Como posso ajudar hoje?\n\n" + MenuBody,
}

// extra canned responses used by the dispatcher outside table transitions.
const (
	GratitudeReply = "Nós que agradecemos, {nome}! 🙏 Se precisar de algo é só chamar. Deus abençoe!"

	RegisteredReply = "Muito prazer, {nome}! 🎉 Seu contato foi registrado. Como posso ajudar?\n\n" + MenuBody

	PrayerConfirmReply = "Recebemos seu pedido, {nome}. 🙏 Nossa equipe de intercessão já está orando por você. " +
		"Conte sempre conosco!"

	SecretariatConfirmReply = "Mensagem encaminhada para a secretaria, {nome}. ✅ Em breve alguém retorna para você."

	NotUnderstoodReply = "Desculpe, {nome}, não consegui entender. 🤔 Veja se uma destas opções ajuda:\n\n" + MenuBody

	FieldUpdatedReply = "Campo atualizado com sucesso! ✅"
)

// Template returns the canned response template for a state.
func Template(s models.State) string {
	return templates[s]
}

// Render resolves a template's {nome} placeholder against the visitor's
// first name. When the name is unknown the placeholder and any surrounding
// double spaces are removed so the text still reads naturally.
func Render(tpl, firstName string) string {
	if firstName == "" {
		tpl = strings.ReplaceAll(tpl, ", "+NamePlaceholder, "")
		tpl = strings.ReplaceAll(tpl, " "+NamePlaceholder, "")
		tpl = strings.ReplaceAll(tpl, NamePlaceholder, "")
		return tpl
	}
	return strings.ReplaceAll(tpl, NamePlaceholder, firstName)
}

// RenderState renders the template for a state with the visitor's name.
func RenderState(s models.State, firstName string) string {
	return Render(Template(s), firstName)
}
