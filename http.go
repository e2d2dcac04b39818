package bankledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	statusOK = []byte(`{"status":"OK"}`)
)

func NewHTTPHandler(svc Service, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.NotFound(HTTPNotFound)
	mux.Route("/customers", func(r chi.Router) {
		r.Post("/", hndlr.Register)
		r.Route("/{custID:[0-9]+}", func(rr chi.Router) {
			rr.Get("/", hndlr.Customer)
			rr.Delete("/", hndlr.RemoveCustomer)
			rr.Post("/login", hndlr.Login)
			rr.Post("/secret", hndlr.ChangeSecret)
			rr.Post("/secret/reset", hndlr.ResetSecret)
			rr.Post("/accounts/{acctID:[0-9]+}/deposit", hndlr.Deposit)
			rr.Post("/accounts/{acctID:[0-9]+}/withdraw", hndlr.Withdraw)
			rr.Post("/transfers", hndlr.Transfer)
			rr.Get("/transfers", hndlr.History)
			rr.Post("/fx", hndlr.OpenFXAccount)
			rr.Post("/exchange", hndlr.Exchange)
			rr.Get("/statement", hndlr.Statement)
		})
	})

	return mux
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

// decode reads a JSON body into dst, writing the error response itself when
// it fails.
func (h *httpHandler) decode(w http.ResponseWriter, r *http.Request, method string, dst any) bool {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", method).Msg("error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return false
	}
	if err = json.Unmarshal(buf, dst); err != nil {
		h.Log.Err(err).Str("method", method).Msg("error unmarshalling JSON")
		WriteHTTPError(w, badRequest("request body", "malformed JSON"))
		return false
	}
	return true
}

func (h *httpHandler) secret(w http.ResponseWriter, r *http.Request, method string) (string, bool) {
	secret := r.Header.Get("secret")
	if secret == "" {
		h.Log.Error().Str("method", method).Msg("missing secret header")
		WriteHTTPError(w, ErrUnauthorized)
		return "", false
	}
	return secret, true
}

func (h *httpHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if !h.decode(w, r, "register", &req) {
		return
	}
	c, err := h.Svc.Register(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *httpHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if !h.decode(w, r, "login", &req) {
		return
	}
	req.CustomerID = chi.URLParam(r, "custID")
	c, err := h.Svc.Login(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *httpHandler) Customer(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "customer")
	if !ok {
		return
	}
	req := CustomerReq{CustomerID: chi.URLParam(r, "custID"), Secret: secret}
	c, err := h.Svc.Customer(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *httpHandler) RemoveCustomer(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "remove")
	if !ok {
		return
	}
	req := CustomerReq{CustomerID: chi.URLParam(r, "custID"), Secret: secret}
	if err := h.Svc.RemoveCustomer(r.Context(), req); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(statusOK)
}

func (h *httpHandler) ChangeSecret(w http.ResponseWriter, r *http.Request) {
	var req ChangeSecretReq
	if !h.decode(w, r, "change_secret", &req) {
		return
	}
	req.CustomerID = chi.URLParam(r, "custID")
	if err := h.Svc.ChangeSecret(r.Context(), req); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(statusOK)
}

func (h *httpHandler) ResetSecret(w http.ResponseWriter, r *http.Request) {
	var req ResetSecretReq
	if !h.decode(w, r, "reset_secret", &req) {
		return
	}
	req.CustomerID = chi.URLParam(r, "custID")
	if err := h.Svc.ResetSecret(r.Context(), req); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(statusOK)
}

func (h *httpHandler) chargeReq(w http.ResponseWriter, r *http.Request, method string) (ChargeReq, bool) {
	var req ChargeReq
	secret, ok := h.secret(w, r, method)
	if !ok {
		return req, false
	}
	if !h.decode(w, r, method, &req) {
		return req, false
	}
	acctID, err := strconv.Atoi(chi.URLParam(r, "acctID"))
	if err != nil {
		h.Log.Err(err).Str("method", method).Msg("error parsing account ID")
		WriteHTTPError(w, badRequest("acctID", "invalid format"))
		return req, false
	}
	req.CustomerID = chi.URLParam(r, "custID")
	req.Secret = secret
	req.AcctID = acctID
	return req, true
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chargeReq(w, r, "deposit")
	if !ok {
		return
	}
	res, err := h.Svc.Deposit(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *httpHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chargeReq(w, r, "withdraw")
	if !ok {
		return
	}
	res, err := h.Svc.Withdraw(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Transfer answers 422 with the failed ledger entry when the transfer was
// attempted but declined.
func (h *httpHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "transfer")
	if !ok {
		return
	}
	var req TransferReq
	if !h.decode(w, r, "transfer", &req) {
		return
	}
	req.CustomerID = chi.URLParam(r, "custID")
	req.Secret = secret
	entry, err := h.Svc.Transfer(r.Context(), req)
	if err != nil && entry == nil {
		WriteHTTPError(w, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, entry)
}

func (h *httpHandler) History(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "history")
	if !ok {
		return
	}
	days, ok := h.days(w, r, "history")
	if !ok {
		return
	}
	req := HistoryReq{
		CustomerID: chi.URLParam(r, "custID"),
		Secret:     secret,
		DaysBack:   days,
	}
	entries, err := h.Svc.History(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *httpHandler) days(w http.ResponseWriter, r *http.Request, method string) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		h.Log.Err(err).Str("method", method).Msg("error parsing days")
		WriteHTTPError(w, badRequest("days", "invalid format"))
		return 0, false
	}
	return days, true
}

func (h *httpHandler) OpenFXAccount(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "open_fx")
	if !ok {
		return
	}
	var req OpenFXReq
	if !h.decode(w, r, "open_fx", &req) {
		return
	}
	req.CustomerID = chi.URLParam(r, "custID")
	req.Secret = secret
	acct, err := h.Svc.OpenFXAccount(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *httpHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "exchange")
	if !ok {
		return
	}
	var req ExchangeReq
	if !h.decode(w, r, "exchange", &req) {
		return
	}
	req.CustomerID = chi.URLParam(r, "custID")
	req.Secret = secret
	res, err := h.Svc.Exchange(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	secret, ok := h.secret(w, r, "statement")
	if !ok {
		return
	}
	days, ok := h.days(w, r, "statement")
	if !ok {
		return
	}
	req := StatementReq{
		CustomerID: chi.URLParam(r, "custID"),
		Secret:     secret,
		DaysBack:   days,
	}
	// buffer so a failure can still produce a JSON error
	buf := new(bytes.Buffer)
	if err := h.Svc.Statement(r.Context(), buf, req); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Err(err).Str("method", "statement").Msg("error writing statement")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	errnf := &ErrNotFound{}
	errbr := &ErrBadRequest{}
	errtf := &ErrTransferFailed{}
	switch {
	case errors.As(err, errnf):
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(errnf)
	case errors.As(err, errbr):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errbr)
	case errors.As(err, errtf):
		w.WriteHeader(http.StatusUnprocessableEntity)
		ne = json.NewEncoder(w).Encode(errtf)
	case errors.Is(err, ErrUnauthorized):
		w.WriteHeader(http.StatusUnauthorized)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	case errors.Is(err, ErrRateUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	case errors.Is(err, ErrServiceBusy):
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		resp := map[string]string{
			"message": "server error",
		}
		ne = json.NewEncoder(w).Encode(resp)
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
