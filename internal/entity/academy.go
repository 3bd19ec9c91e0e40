package entity

import "time"

// Entidade: Academy (a academia dona dos leads; exatamente uma por usuário)
type Academy struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`

	// Usuário dono, usado para localizar (ou criar) a academia no login.
	OwnerID string `json:"ownerId"`

	CreatedAt time.Time `json:"createdAt"`
}
