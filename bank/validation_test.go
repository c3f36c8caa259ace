package bank_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bank-ledger/bank"
)

func fieldRules(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *bank.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, bank.ErrValidation)
	rules := make(map[string]string)
	for _, f := range verr.Fields {
		rules[f.Field] = f.Rule
	}
	return rules
}

func TestValidateClient(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    bank.NewClient
		field string
		rule  string
	}{
		{"missing name", bank.NewClient{Email: "a@x.com", Phone: "123456789"}, "name", "required"},
		{"missing email", bank.NewClient{Name: "Ana", Phone: "123456789"}, "email", "required"},
		{"email without at", bank.NewClient{Name: "Ana", Email: "ana.x.com", Phone: "123456789"}, "email", "contains"},
		{"missing phone", bank.NewClient{Name: "Ana", Email: "a@x.com"}, "phone", "required"},
		{"short phone", bank.NewClient{Name: "Ana", Email: "a@x.com", Phone: "12345678"}, "phone", "min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Clients.Validate(ctx, tt.in)
			assert.Equal(t, tt.rule, fieldRules(t, err)[tt.field])
		})
	}

	assert.NoError(t, b.Clients.Validate(ctx, validClient()))
}

func TestValidate_IsRepeatable(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()

	bad := bank.NewClient{Name: "Ana", Email: "nope", Phone: "1"}
	first := b.Clients.Validate(ctx, bad)
	second := b.Clients.Validate(ctx, bad)
	assert.Equal(t, first.Error(), second.Error())

	assert.NoError(t, b.Clients.Validate(ctx, validClient()))
	assert.NoError(t, b.Clients.Validate(ctx, validClient()))
}

func TestValidateAccount(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	client, err := b.Clients.Create(ctx, validClient())
	require.NoError(t, err)

	// Zero and negative balances are allowed.
	assert.NoError(t, b.Accounts.Validate(ctx, bank.NewAccount{AccountNumber: "1", Balance: dec(0), ClientID: client.ID}))
	assert.NoError(t, b.Accounts.Validate(ctx, bank.NewAccount{AccountNumber: "1", Balance: dec(-50), ClientID: client.ID}))

	rules := fieldRules(t, b.Accounts.Validate(ctx, bank.NewAccount{ClientID: client.ID}))
	assert.Equal(t, "required", rules["accountNumber"])
	assert.Equal(t, "required", rules["balance"])

	rules = fieldRules(t, b.Accounts.Validate(ctx, bank.NewAccount{AccountNumber: "1", Balance: dec(0), ClientID: 999}))
	assert.Equal(t, "exists", rules["clientId"])

	rules = fieldRules(t, b.Accounts.Validate(ctx, bank.NewAccount{AccountNumber: "1", Balance: dec(0)}))
	assert.Equal(t, "required", rules["clientId"])
}

func TestValidateMovement(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 100)

	assert.NoError(t, b.Movements.Validate(ctx, bank.NewMovement{Quantity: dec(-5), Date: 1, AccountID: account.ID}))
	assert.NoError(t, b.Movements.Validate(ctx, bank.NewMovement{Quantity: dec(0), Date: 1, AccountID: account.ID}))

	rules := fieldRules(t, b.Movements.Validate(ctx, bank.NewMovement{Date: 1, AccountID: account.ID}))
	assert.Equal(t, "required", rules["quantity"])

	rules = fieldRules(t, b.Movements.Validate(ctx, bank.NewMovement{Quantity: dec(1), Date: -1, AccountID: account.ID}))
	assert.Equal(t, "gt", rules["date"])

	rules = fieldRules(t, b.Movements.Validate(ctx, bank.NewMovement{Quantity: dec(1), Date: 1, AccountID: 999}))
	assert.Equal(t, "exists", rules["accountId"])
}
