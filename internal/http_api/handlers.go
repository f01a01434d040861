package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitfaucet/faucet/pkg/validation"
)

const (
	// CookieLastEarnTimestamp is the cookie carrying the sealed last-grant
	// token.
	CookieLastEarnTimestamp = "let"

	// botDeterrentMarker is the literal the "c" body parameter must carry.
	// It is filled in by client-side JavaScript, so its absence means either
	// a robot or a human with JavaScript disabled.
	botDeterrentMarker = "js"
)

// EarnRequest represents the form body for an earn attempt
type EarnRequest struct {
	BotDeterrent  string `form:"c"`
	WalletAddress string `form:"wallet_address"`
}

// EarnResponse represents the outcome of an earn attempt or a status query
type EarnResponse struct {
	Success       bool    `json:"success"`
	WaitingTime   float64 `json:"waiting_time"`
	Balance       int64   `json:"balance"`
	Paid          int64   `json:"paid"`
	WalletAddress string  `json:"wallet_address,omitempty"`
}

// status is a handler for GET /. It reports the remaining wait and the
// current balance without mutating any state.
func (s *HTTPServer) status(c *gin.Context) {
	clientToken, _ := c.Cookie(CookieLastEarnTimestamp)
	walletAddress := c.Query("wallet_address")

	result, err := s.faucet.Status(c.Request.Context(), walletAddress, clientToken)
	if err != nil {
		s.logger.Error("Failed to compute status: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to compute status",
		})
		return
	}

	c.JSON(http.StatusOK, EarnResponse{
		Success:       true,
		WaitingTime:   result.WaitingTime,
		Balance:       result.Balance,
		WalletAddress: walletAddress,
	})
}

// earn is a handler for POST /. It runs one earn transaction.
func (s *HTTPServer) earn(c *gin.Context) {
	var req EarnRequest
	if err := c.ShouldBind(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if req.BotDeterrent != botDeterrentMarker {
		s.logger.Debug("Bot deterrent marker missing or wrong")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Are you a bot?",
		})
		return
	}

	if err := validation.ValidateWalletAddress(req.WalletAddress); err != nil {
		s.logger.Debug("Invalid wallet address", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid wallet address: " + err.Error(),
		})
		return
	}

	clientToken, _ := c.Cookie(CookieLastEarnTimestamp)

	result, err := s.faucet.Earn(c.Request.Context(), req.WalletAddress, clientToken)
	if err != nil {
		s.logger.Error("Earn request failed", "error", err, "wallet", req.WalletAddress)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal error",
		})
		return
	}

	// Re-issue the sealed cookie on every grant. The cookie lives as long
	// as the stored earn record.
	if result.Granted {
		c.SetCookie(CookieLastEarnTimestamp, result.ClientToken, int(s.config.EarnRecordTTL.Seconds()), "/", "", false, true)
	}

	c.JSON(http.StatusOK, EarnResponse{
		Success:       true,
		WaitingTime:   result.WaitingTime,
		Balance:       result.Balance,
		Paid:          result.Paid,
		WalletAddress: req.WalletAddress,
	})
}
