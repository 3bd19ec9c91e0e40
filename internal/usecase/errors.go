package usecase

import "fmt"

// DomainError é uma falha de regra de negócio: o chamador errou ou a
// operação não faz sentido no estado atual. Vira 4xx na borda HTTP.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError é uma falha de infraestrutura (rede, banco remoto).
// O estado em memória permanece no último valor bom conhecido.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

var (
	// ErrNoAcademyScope: operação sem academia selecionada. Erro tipado
	// para o chamador poder reagir; o estado em memória fica intocado.
	ErrNoAcademyScope = &DomainError{Code: "no_academy_scope", Message: "nenhuma academia selecionada"}

	ErrLeadNotFound = &DomainError{Code: "lead_not_found", Message: "lead não encontrado"}

	ErrInvalidCredentials = &DomainError{Code: "invalid_credentials", Message: "email ou senha inválidos"}
)

func errInvalidStatus(status string) *DomainError {
	return &DomainError{
		Code:    "invalid_status",
		Message: fmt.Sprintf("status %q não existe no funil", status),
	}
}

func errInvalidTransition(from, to string) *DomainError {
	return &DomainError{
		Code:    "invalid_status_transition",
		Message: fmt.Sprintf("transição de %q para %q não é permitida", from, to),
	}
}

func errRemoteFailure(op string) *TechnicalError {
	return &TechnicalError{
		Code:    "remote_failure",
		Message: fmt.Sprintf("falha de comunicação com o banco remoto em %s", op),
	}
}
