package rpcapi

import (
	"github.com/ndrandal/quant-gateway/internal/adapter"
)

// Status embeds the gateway error taxonomy in every unary response, per
// spec.md §6 ("every unary method returns a response embedding a Status").
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func okStatus() Status { return Status{Code: "OK"} }

// --- Health ---

type HealthCheckRequest struct {
	Service string `json:"service"`
}

type HealthCheckResponse struct {
	Status  Status `json:"status"`
	Serving string `json:"serving"` // SERVING | NOT_SERVING
}

// --- DataService ---

type MarketDataRequest struct {
	StockCodes []string `json:"stock_codes"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Period     string   `json:"period"`
	Fields     []string `json:"fields"`
	AdjustType string   `json:"adjust_type"`
}

type MarketDataResponse struct {
	Status Status       `json:"status"`
	Bars   []adapter.Bar `json:"bars"`
}

type SectorListRequest struct{}

type SectorListResponse struct {
	Status  Status   `json:"status"`
	Sectors []string `json:"sectors"`
}

type SubscribeRequest struct {
	Symbols          []string `json:"symbols"`
	AdjustType       string   `json:"adjust_type"`
	SubscriptionType string   `json:"subscription_type"`
}

type SubscribeResponse struct {
	Status         Status `json:"status"`
	SubscriptionID string `json:"subscription_id"`
}

type UnsubscribeRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

type UnsubscribeResponse struct {
	Status  Status `json:"status"`
	Success bool   `json:"success"`
}

// --- TradingService ---

type ConnectRequest struct {
	AccountID   string `json:"account_id"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

type ConnectResponse struct {
	Status      Status                  `json:"status"`
	SessionID   string                  `json:"session_id"`
	AccountInfo adapter.AccountSnapshot `json:"account_info"`
}

type SubmitOrderRequest struct {
	SessionID string  `json:"session_id"`
	StockCode string  `json:"stock_code"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
	Volume    int64   `json:"volume"`
	Price     float64 `json:"price"`
}

type SubmitOrderResponse struct {
	Status    Status `json:"status"`
	OrderID   string `json:"order_id"`
	Simulated bool   `json:"simulated"`
}

type CancelOrderRequest struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
}

type CancelOrderResponse struct {
	Status    Status `json:"status"`
	Simulated bool   `json:"simulated"`
}
