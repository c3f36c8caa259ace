/*
handlers.go - HTTP API handlers for the banking ledger

PURPOSE:
  Exposes the bank engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the bank stores and ledger.

ENDPOINTS:
  Clients:
    GET    /api/clients                          List all clients
    POST   /api/clients                          Create client
    GET    /api/clients/{clientID}               Get client
    PUT    /api/clients/{clientID}               Update client fields
    DELETE /api/clients/{clientID}               Delete client

  Accounts:
    GET    /api/clients/{clientID}/accounts      Client with its accounts
    POST   /api/clients/{clientID}/accounts      Open account for client
    PUT    /api/accounts/{accountID}             Update account fields
    DELETE /api/accounts/{accountID}             Delete account

  Movements:
    GET    /api/accounts/{accountID}/movements   Account with its movements
    POST   /api/accounts/{accountID}/movements   Post movement (ledger)
    GET    /api/clients/{clientID}/accounts/{accountID}/movements
                                                 Client, account, movements
    DELETE /api/movements/{movementID}           Delete movement record

REQUEST FLOW:
  1. Parse path ids (unparsable id = not found)
  2. Check the parent entity exists (404 first)
  3. Decode and validate the body (400)
  4. Call the store or the ledger
  5. Serialize the returned copy

ERROR HANDLING:
  Errors are returned as {"message": ...} from a fixed catalog:
  - 400: Validation errors, invalid JSON
  - 404: Client, account or movement not found
  - 500: Balance update or delete failed after the entity was found

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/bank-ledger/bank"
)

// Error messages returned in ErrorResponse.Message.
const (
	MsgClientNotFound   = "Client not found"
	MsgAccountNotFound  = "Account not found"
	MsgMovementNotFound = "Movement not found"
	MsgAccountNotOwned  = "The account does not belong to the specified client"
	MsgValidationFailed = "Invalid JSON format"
	MsgServerError      = "Something went wrong! :("
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Bank *bank.Bank
}

// NewHandler creates a new handler over the given bank.
func NewHandler(b *bank.Bank) *Handler {
	return &Handler{Bank: b}
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Bank.Clients.List(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "clientID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
		return
	}

	client, err := h.Bank.Clients.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(client))
}

// CreateClient creates a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !decode(w, r, &req) {
		return
	}

	client, err := h.Bank.Clients.Create(r.Context(), bank.NewClient{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(client))
}

// UpdateClient overwrites the client fields present in the body.
// Updated values are not validated.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "clientID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Clients.Get(ctx, id); err != nil {
		writeFailure(w, err)
		return
	}

	var req UpdateClientRequest
	if !decode(w, r, &req) {
		return
	}

	client, err := h.Bank.Clients.Update(ctx, id, bank.ClientPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(client))
}

// DeleteClient deletes a client. Its accounts are kept.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "clientID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Clients.Get(ctx, id); err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.Bank.Clients.Delete(ctx, id); err != nil {
		writeServerError(w, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// GetClientAccounts returns a client with all of its accounts.
func (h *Handler) GetClientAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "clientID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
		return
	}

	ca, err := h.Bank.ClientAccounts(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientAccountsDTO(ca))
}

// CreateAccount opens an account for the client in the URL.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	clientID, ok := idParam(r, "clientID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Clients.Get(ctx, clientID); err != nil {
		writeFailure(w, err)
		return
	}

	var req CreateAccountRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.Bank.Accounts.Create(ctx, bank.NewAccount{
		AccountNumber: req.AccountNumber,
		Balance:       decimalPtr(req.Balance),
		ClientID:      clientID,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

// UpdateAccount overwrites the account fields present in the body.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgAccountNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Accounts.Get(ctx, id); err != nil {
		writeFailure(w, err)
		return
	}

	var req UpdateAccountRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.Bank.Accounts.Update(ctx, id, bank.AccountPatch{
		AccountNumber: req.AccountNumber,
		Balance:       decimalPtr(req.Balance),
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// DeleteAccount deletes an account. Its movements are kept.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgAccountNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Accounts.Get(ctx, id); err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.Bank.Accounts.Delete(ctx, id); err != nil {
		writeServerError(w, "delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MOVEMENT HANDLERS
// =============================================================================

// GetAccountMovements returns an account with its movements.
func (h *Handler) GetAccountMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgAccountNotFound, nil)
		return
	}

	st, err := h.Bank.Ledger.Statement(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(st))
}

// GetClientAccountMovements returns a client with one of its accounts and
// that account's movements.
func (h *Handler) GetClientAccountMovements(w http.ResponseWriter, r *http.Request) {
	clientID, ok := idParam(r, "clientID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
		return
	}
	accountID, ok := idParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgAccountNotFound, nil)
		return
	}

	cs, err := h.Bank.ClientStatement(r.Context(), clientID, accountID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientStatementDTO(cs))
}

// CreateMovement posts a movement through the ledger and returns the
// refreshed account with its movements.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgAccountNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Accounts.Get(ctx, id); err != nil {
		writeFailure(w, err)
		return
	}

	var req CreateMovementRequest
	if !decode(w, r, &req) {
		return
	}
	quantity := decimalPtr(req.Quantity)
	if quantity == nil {
		writeError(w, http.StatusBadRequest, MsgValidationFailed, nil, "quantity: required")
		return
	}

	st, err := h.Bank.Ledger.Post(ctx, id, *quantity)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStatementDTO(st))
}

// DeleteMovement deletes a movement record. The account balance is not
// changed.
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "movementID")
	if !ok {
		writeError(w, http.StatusNotFound, MsgMovementNotFound, nil)
		return
	}
	ctx := r.Context()

	if _, err := h.Bank.Movements.Get(ctx, id); err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.Bank.Movements.Delete(ctx, id); err != nil {
		writeServerError(w, "delete movement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error, details ...string) {
	if err != nil {
		log.Printf("[API] %d %s: %v", status, message, err)
	}
	writeJSON(w, status, ErrorResponse{Message: message, Details: details})
}

func writeServerError(w http.ResponseWriter, op string, err error) {
	log.Printf("[API] %s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: MsgServerError})
}

// writeFailure maps a bank error to its status code and catalog message.
// Posting errors are checked before not-found: a balance failure caused by
// a vanished account is a server error, not a 404.
func writeFailure(w http.ResponseWriter, err error) {
	var verr *bank.ValidationError
	switch {
	case errors.Is(err, bank.ErrBalanceApply):
		writeServerError(w, "post movement", err)
	case errors.As(err, &verr):
		details := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = f.String()
		}
		writeError(w, http.StatusBadRequest, MsgValidationFailed, nil, details...)
	case errors.Is(err, bank.ErrClientNotFound):
		writeError(w, http.StatusNotFound, MsgClientNotFound, nil)
	case errors.Is(err, bank.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, MsgAccountNotFound, nil)
	case errors.Is(err, bank.ErrMovementNotFound):
		writeError(w, http.StatusNotFound, MsgMovementNotFound, nil)
	case errors.Is(err, bank.ErrAccountNotOwned):
		writeError(w, http.StatusNotFound, MsgAccountNotOwned, nil)
	default:
		writeServerError(w, "request", err)
	}
}

// decode reads the JSON body into dst. On failure it writes a 400 and
// returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, MsgValidationFailed, nil, err.Error())
		return false
	}
	return true
}

// idParam parses a path id. Anything that is not a positive integer can
// never match a stored entity and is reported as not found by callers.
func idParam(r *http.Request, name string) (bank.ID, bool) {
	return bank.ParseID(chi.URLParam(r, name))
}
