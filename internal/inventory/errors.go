package inventory

import (
	"errors"
	"fmt"
)

// Kind categoriza os erros do engine de inventário.
type Kind string

const (
	// KindInvalidInput indica campos malformados ou fora do intervalo permitido.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindNotFound indica produto ou pedido inexistente.
	KindNotFound Kind = "NOT_FOUND"

	// KindInsufficientStock indica que o atendimento deixaria o estoque negativo.
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"

	// KindEmptyQueue indica que não há pedidos pendentes.
	KindEmptyQueue Kind = "EMPTY_QUEUE"

	// KindEmptyLog indica que não há operações para desfazer.
	KindEmptyLog Kind = "EMPTY_LOG"

	// KindConflict indica que o alvo do undo não está mais no estado registrado.
	KindConflict Kind = "CONFLICT"
)

// Error é o erro tipado retornado por todas as operações do engine.
type Error struct {
	Kind    Kind
	Message string
}

// Sentinelas por kind, para uso com errors.Is.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrEmptyQueue        = &Error{Kind: KindEmptyQueue}
	ErrEmptyLog          = &Error{Kind: KindEmptyLog}
	ErrConflict          = &Error{Kind: KindConflict}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is compara apenas o Kind, então errors.Is(err, ErrNotFound) funciona para qualquer mensagem.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extrai o Kind de um erro (mesmo encapsulado). Retorna "" para erros desconhecidos.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
