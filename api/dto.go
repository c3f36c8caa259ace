/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the bank package's records from the external API contract. Keys are
  camelCase to match the existing clients of this API.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Balances and quantities travel as JSON numbers (float64) and are
  converted to decimal.Decimal at the boundary. A quoted or missing number
  is rejected before it reaches the ledger.

COMPOSED RESPONSES:
  ClientAccountsDTO, StatementDTO and ClientStatementDTO embed the base
  DTO and add the child list, which is always present (possibly empty).

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/bank-ledger/bank"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID    bank.ID `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
}

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID            bank.ID `json:"id"`
	AccountNumber string  `json:"accountNumber"`
	Balance       float64 `json:"balance"`
	ClientID      bank.ID `json:"clientId"`
}

// MovementDTO represents a movement in API responses.
// Date is epoch milliseconds.
type MovementDTO struct {
	ID        bank.ID `json:"id"`
	Quantity  float64 `json:"quantity"`
	Date      int64   `json:"date"`
	AccountID bank.ID `json:"accountId"`
}

// ClientAccountsDTO is a client with its accounts.
type ClientAccountsDTO struct {
	ClientDTO
	Accounts []AccountDTO `json:"accounts"`
}

// StatementDTO is an account with its movements.
type StatementDTO struct {
	AccountDTO
	Movements []MovementDTO `json:"movements"`
}

// ClientStatementDTO is a client with one account and its movements.
type ClientStatementDTO struct {
	ClientDTO
	Accounts []StatementDTO `json:"accounts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateClientRequest is the request to create a client.
type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateClientRequest carries the client fields to change.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// CreateAccountRequest is the request to open an account for a client.
// The client comes from the URL.
type CreateAccountRequest struct {
	AccountNumber string   `json:"accountNumber"`
	Balance       *float64 `json:"balance"`
}

// UpdateAccountRequest carries the account fields to change.
type UpdateAccountRequest struct {
	AccountNumber *string  `json:"accountNumber"`
	Balance       *float64 `json:"balance"`
}

// CreateMovementRequest is the request to post a movement.
// The account comes from the URL and the date is set by the server.
type CreateMovementRequest struct {
	Quantity *float64 `json:"quantity"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toClientDTO(c bank.Client) ClientDTO {
	return ClientDTO{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func toAccountDTO(a bank.Account) AccountDTO {
	return AccountDTO{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance.InexactFloat64(),
		ClientID:      a.ClientID,
	}
}

func toMovementDTO(m bank.Movement) MovementDTO {
	return MovementDTO{
		ID:        m.ID,
		Quantity:  m.Quantity.InexactFloat64(),
		Date:      m.Date,
		AccountID: m.AccountID,
	}
}

func toClientAccountsDTO(ca bank.ClientAccounts) ClientAccountsDTO {
	dto := ClientAccountsDTO{
		ClientDTO: toClientDTO(ca.Client),
		Accounts:  make([]AccountDTO, len(ca.Accounts)),
	}
	for i, a := range ca.Accounts {
		dto.Accounts[i] = toAccountDTO(a)
	}
	return dto
}

func toStatementDTO(st bank.Statement) StatementDTO {
	dto := StatementDTO{
		AccountDTO: toAccountDTO(st.Account),
		Movements:  make([]MovementDTO, len(st.Movements)),
	}
	for i, m := range st.Movements {
		dto.Movements[i] = toMovementDTO(m)
	}
	return dto
}

func toClientStatementDTO(cs bank.ClientStatement) ClientStatementDTO {
	return ClientStatementDTO{
		ClientDTO: toClientDTO(cs.Client),
		Accounts:  []StatementDTO{toStatementDTO(cs.Statement)},
	}
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
