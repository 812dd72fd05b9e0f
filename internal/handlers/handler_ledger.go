package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for journal entries and reports.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	accountService portssvc.AccountSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade, accountService portssvc.AccountSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService, accountService: accountService}
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, accountService portssvc.AccountSvcFacade) {
	h := newLedgerHandler(ledgerService, accountService)

	rg.POST("/entries", h.postEntry)
	rg.GET("/entries/:entryID", h.getEntry)
	rg.POST("/entries/:entryID/reverse", h.reverseEntry)
	rg.GET("/accounts", h.listAccountsByType)
	rg.POST("/accounts", h.createAccount)
	rg.GET("/accounts/:accountID/balance", h.getAccountBalance)
	rg.GET("/trial-balance", h.getTrialBalance)
}

// asOfOrNow parses the optional asOf query parameter (RFC 3339 or date).
func asOfOrNow(c *gin.Context) (time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		// End of day so entries dated that day are included.
		return t.Add(24*time.Hour - time.Nanosecond), true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asOf parameter, expected RFC 3339 or YYYY-MM-DD"})
	return time.Time{}, false
}

func (h *ledgerHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for postEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middleware.GetActorFromContext(c)
	entry, err := h.ledgerService.PostEntry(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to post journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *ledgerHandler) getEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *ledgerHandler) reverseEntry(c *gin.Context) {
	actor := middleware.GetActorFromContext(c)
	entry, err := h.ledgerService.ReverseEntry(c.Request.Context(), c.Param("entryID"), actor)
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *ledgerHandler) getAccountBalance(c *gin.Context) {
	asOf, ok := asOfOrNow(c)
	if !ok {
		return
	}
	accountID := c.Param("accountID")
	balance, err := h.ledgerService.GetAccountBalance(c.Request.Context(), accountID, asOf)
	if err != nil {
		respondError(c, err, "Failed to compute account balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountID: accountID,
		AsOf:      asOf,
		Balance:   balance,
	})
}

func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	asOf, ok := asOfOrNow(c)
	if !ok {
		return
	}
	tb, err := h.ledgerService.GetTrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to compute trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

func (h *ledgerHandler) listAccountsByType(c *gin.Context) {
	accountType := domain.AccountType(c.Query("type"))
	switch accountType {
	case domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE"})
		return
	}
	asOf, ok := asOfOrNow(c)
	if !ok {
		return
	}
	accounts, err := h.ledgerService.GetAccountsByType(c.Request.Context(), accountType, asOf)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *ledgerHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middleware.GetActorFromContext(c)
	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}
