package payout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bitfaucet/faucet/internal/config"
	"github.com/bitfaucet/faucet/internal/models"
	"github.com/bitfaucet/faucet/pkg/logger"
)

const requestTimeout = 30 * time.Second

// Coinbase sends payouts through the Coinbase transactions API. Every
// request carries an HMAC-SHA256 signature over timestamp, method, path and
// the exact serialized body.
type Coinbase struct {
	logger *logger.Logger

	httpClient *http.Client
	baseURL    string
	path       string
	apiKey     string
	apiSecret  []byte
	apiVersion string

	unitsPerCoin int64
	currency     string
	memo         string

	nowFn func() time.Time
}

// transactionRequest is the processor's "send money" document. It is
// serialized exactly once; the signature covers those bytes.
type transactionRequest struct {
	Type              string `json:"type"`
	To                string `json:"to"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Description       string `json:"description"`
	SkipNotifications bool   `json:"skip_notifications"`
}

// transactionResponse is the success document returned by the processor.
type transactionResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// NewCoinbase creates a new Coinbase payout service
func NewCoinbase(cfg *config.Config, logger *logger.Logger) models.PayoutService {
	return &Coinbase{
		logger:       logger,
		httpClient:   &http.Client{Timeout: requestTimeout},
		baseURL:      strings.TrimSuffix(cfg.ProcessorBaseURL, "/"),
		path:         cfg.ProcessorTransactionsPath,
		apiKey:       cfg.ProcessorAPIKey,
		apiSecret:    []byte(cfg.ProcessorAPISecret),
		apiVersion:   cfg.ProcessorAPIVersion,
		unitsPerCoin: cfg.UnitsPerCoin,
		currency:     cfg.Currency,
		memo:         cfg.PayoutMemo,
		nowFn:        time.Now,
	}
}

// Send makes exactly one payout attempt and reports an unambiguous outcome.
func (c *Coinbase) Send(ctx context.Context, identity string, amountUnits int64) models.PayoutResult {
	body, err := json.Marshal(transactionRequest{
		Type:              "send",
		To:                identity,
		Amount:            FormatAmount(amountUnits, c.unitsPerCoin),
		Currency:          c.currency,
		Description:       c.memo,
		SkipNotifications: true,
	})
	if err != nil {
		c.logger.Error("Failed to serialize payout request: ", err)
		return models.PayoutResult{}
	}

	timestamp := strconv.FormatInt(c.nowFn().Unix(), 10)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Failed to build payout request: ", err)
		return models.PayoutResult{}
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("CB-VERSION", c.apiVersion)
	request.Header.Set("CB-ACCESS-KEY", c.apiKey)
	request.Header.Set("CB-ACCESS-TIMESTAMP", timestamp)
	request.Header.Set("CB-ACCESS-SIGN", Signature(c.apiSecret, timestamp, http.MethodPost, c.path, body))

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Errorf("Error while sending money to %s: %s", identity, err)
		c.logger.Error("Request: ", string(body))
		return models.PayoutResult{}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		c.logger.Errorf("Failed to read processor response for %s: %s", identity, err)
		return models.PayoutResult{}
	}

	if response.StatusCode == http.StatusOK || response.StatusCode == http.StatusCreated {
		var parsed transactionResponse
		if err := json.Unmarshal(responseBody, &parsed); err == nil && parsed.Data.ID != "" {
			c.logger.Infof("Successfully sent money to %s. Transaction %s.", identity, parsed.Data.ID)
			return models.PayoutResult{Success: true, TransactionID: parsed.Data.ID}
		}
		c.logger.Errorf("Unparsable success response while sending money to %s", identity)
		c.logger.Error("Response: ", string(responseBody))
		return models.PayoutResult{}
	}

	c.logger.Errorf("Error while sending money to %s: %d %s", identity, response.StatusCode, http.StatusText(response.StatusCode))
	c.logger.Error("Headers: ", response.Header)
	c.logger.Error("Request: ", string(body))
	c.logger.Error("Response: ", string(responseBody))
	return models.PayoutResult{}
}

// Signature computes hex(HMAC-SHA256(secret, timestamp || method || path ||
// body)), the processor's request authentication scheme.
func Signature(secret []byte, timestamp, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// FormatAmount converts the internal integer unit into the processor's
// decimal representation. unitsPerCoin is a power of ten.
func FormatAmount(units, unitsPerCoin int64) string {
	whole := units / unitsPerCoin
	fraction := units % unitsPerCoin

	if fraction == 0 {
		return strconv.FormatInt(whole, 10)
	}

	width := len(strconv.FormatInt(unitsPerCoin, 10)) - 1
	digits := strings.TrimRight(fmt.Sprintf("%0*d", width, fraction), "0")
	return strconv.FormatInt(whole, 10) + "." + digits
}
