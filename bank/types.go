/*
Package bank provides the banking ledger engine.

PURPOSE:
  This package owns clients, accounts and movements, and the protocol that
  keeps an account balance in step with the movements posted against it.
  Persistence is delegated to a Storage implementation; everything above
  it (validation, id checks, posting, rollback) lives here.

KEY CONCEPTS IN THIS FILE (types.go):
  - ID: Sequential integer identity shared by all entities
  - Client, Account, Movement: Stored records (plain values)
  - NewClient, NewAccount, NewMovement: Creation inputs, validated
  - ClientPatch, AccountPatch: Partial updates, merged field by field
  - Statement, ClientStatement: Composed read models for responses

VALUE SEMANTICS:
  Records are returned by value. A caller that mutates what it got back
  only mutates its own copy; stored state changes only through the stores.
  decimal.Decimal is immutable under its public API, so a struct copy is
  a full copy.

REFERENCES:
  Account.ClientID and Movement.AccountID are weak references. They are
  checked when the record is created and never again. Deleting a client
  leaves its accounts in place; deleting an account leaves its movements.

SEE ALSO:
  - storage.go: Persistence contract
  - ledger.go: Balance-mutation protocol
  - validation.go: Input rules
*/
package bank

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID identifies a client, account or movement. Valid ids start at 1.
type ID int64

// ParseID parses a decimal id. It returns false for anything that is not a
// positive integer.
func ParseID(s string) (ID, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return ID(n), true
}

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// =============================================================================
// RECORDS
// =============================================================================

// Client is a bank customer.
type Client struct {
	ID    ID
	Name  string
	Email string
	Phone string
}

// Account is a balance owned by a client.
type Account struct {
	ID            ID
	AccountNumber string
	Balance       decimal.Decimal
	ClientID      ID
}

// Movement is a signed change posted against an account.
// Positive quantities are credits, negative ones debits.
type Movement struct {
	ID        ID
	Quantity  decimal.Decimal
	Date      int64 // epoch milliseconds
	AccountID ID
}

// Time returns the movement date as a time.Time.
func (m Movement) Time() time.Time { return time.UnixMilli(m.Date) }

// =============================================================================
// INPUTS
// =============================================================================

// NewClient is the input for ClientStore.Create.
type NewClient struct {
	Name  string `field:"name" validate:"required"`
	Email string `field:"email" validate:"required,contains=@"`
	Phone string `field:"phone" validate:"required,min=9"`
}

// NewAccount is the input for AccountStore.Create.
// Balance is a pointer so that a missing balance is told apart from zero.
type NewAccount struct {
	AccountNumber string           `field:"accountNumber" validate:"required"`
	Balance       *decimal.Decimal `field:"balance" validate:"required"`
	ClientID      ID               `field:"clientId" validate:"required"`
}

// NewMovement is the input for MovementStore.Create.
// A zero Date is replaced by the current time before validation.
type NewMovement struct {
	Quantity  *decimal.Decimal `field:"quantity" validate:"required"`
	Date      int64            `field:"date" validate:"gt=0"`
	AccountID ID               `field:"accountId" validate:"required"`
}

// ClientPatch carries the fields to overwrite on update. Nil fields are kept.
type ClientPatch struct {
	Name  *string
	Email *string
	Phone *string
}

func (p ClientPatch) apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
}

// AccountPatch carries the fields to overwrite on update. Nil fields are kept.
// The owning client cannot be changed.
type AccountPatch struct {
	AccountNumber *string
	Balance       *decimal.Decimal
}

func (p AccountPatch) apply(a *Account) {
	if p.AccountNumber != nil {
		a.AccountNumber = *p.AccountNumber
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
}

// =============================================================================
// READ MODELS
// =============================================================================

// Statement is an account together with its movements, oldest first.
type Statement struct {
	Account   Account
	Movements []Movement
}

// ClientAccounts is a client together with its accounts.
type ClientAccounts struct {
	Client   Client
	Accounts []Account
}

// ClientStatement is a client together with one of its account statements.
type ClientStatement struct {
	Client    Client
	Statement Statement
}
