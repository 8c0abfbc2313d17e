package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
	"github.com/ndrandal/quant-gateway/internal/subscription"
	"github.com/ndrandal/quant-gateway/internal/tradesession"
)

func handleHealth(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeOK(c, gin.H{"status": "healthy", "uptime_seconds": int(time.Since(deps.StartAt).Seconds())})
	}
}

// --- Data Service ---

type marketDataRequest struct {
	StockCodes []string `json:"stock_codes"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Period     string   `json:"period"`
	Fields     []string `json:"fields"`
	AdjustType string   `json:"adjust_type"`
}

func handleMarketData(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req marketDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		bars, err := deps.Data.MarketData(c.Request.Context(), req.StockCodes, req.StartDate, req.EndDate, req.Period, req.Fields, req.AdjustType)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, bars)
	}
}

type financialRequest struct {
	StockCodes []string `json:"stock_codes"`
	TableList  []string `json:"table_list"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
}

func handleFinancial(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req financialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		out, err := deps.Data.Financial(c.Request.Context(), req.StockCodes, req.TableList, req.StartDate, req.EndDate)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

func handleSectorList(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := deps.Data.SectorList(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

type sectorRequest struct {
	SectorName string `json:"sector_name"`
}

func handleSector(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sectorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		out, err := deps.Data.Sector(c.Request.Context(), req.SectorName)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

type sectorStockRequest struct {
	SectorName string `json:"sector_name"`
	StockCode  string `json:"stock_code"`
}

func handleAddStockToSector(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sectorStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		if err := deps.Data.AddStockToSector(c.Request.Context(), req.SectorName, req.StockCode); err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"success": true})
	}
}

func handleRemoveStockFromSector(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sectorStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		if err := deps.Data.RemoveStockFromSector(c.Request.Context(), req.SectorName, req.StockCode); err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"success": true})
	}
}

type indexWeightRequest struct {
	IndexCode string `json:"index_code"`
	Date      string `json:"date"`
}

func handleIndexWeight(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req indexWeightRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		out, err := deps.Data.IndexWeight(c.Request.Context(), req.IndexCode, req.Date)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

func handleTradingCalendar(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "year must be numeric"))
			return
		}
		cal, err := deps.Data.TradingCalendar(c.Request.Context(), year)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, cal)
	}
}

func handleInstrumentInfo(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		inst, err := deps.Data.InstrumentInfo(c.Request.Context(), c.Param("code"))
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, inst)
	}
}

type subscribeRequest struct {
	Symbols          []string `json:"symbols"`
	AdjustType       string   `json:"adjust_type"`
	SubscriptionType string   `json:"subscription_type"`
}

func handleSubscribe(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		id, err := deps.Data.Subscribe(req.Symbols, req.AdjustType, req.SubscriptionType)
		if err != nil {
			writeError(c, err)
			return
		}
		desc, err := deps.Data.Describe(id)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{
			"subscription_id": string(id), "status": "active",
			"created_at": desc.CreatedAt, "symbols": desc.Symbols,
		})
	}
}

func handleUnsubscribe(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Data.Unsubscribe(subscription.ID(c.Param("id"))); err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"success": true})
	}
}

func handleDescribeSubscription(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		desc, err := deps.Data.Describe(subscription.ID(c.Param("id")))
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, desc)
	}
}

func handleListSubscriptions(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		descs := deps.Data.ListSubscriptions()
		writeOK(c, gin.H{"subscriptions": descs, "total": len(descs)})
	}
}

// --- Trading Service ---

type connectRequest struct {
	AccountID   string `json:"account_id"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

func handleConnect(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req connectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		acctType, ok := adapter.ParseAccountType(req.AccountType)
		if !ok {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "account_type must be one of stock, futures, margin"))
			return
		}
		id, err := deps.Trading.Connect(c.Request.Context(), req.AccountID, req.Password, acctType)
		if err != nil {
			writeError(c, err)
			return
		}
		snap, err := deps.Trading.GetAccountInfo(c.Request.Context(), id, deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"session_id": string(id), "account_info": snap})
	}
}

func handleDisconnect(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Trading.Disconnect(c.Request.Context(), tradesession.ID(c.Param("sid"))); err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"success": true})
	}
}

func handleAccountInfo(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := deps.Trading.GetAccountInfo(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, snap)
	}
}

func handlePositions(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := deps.Trading.QueryPositions(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

func handleAsset(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := deps.Trading.GetAccountInfo(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, snap.Asset)
	}
}

func handleRisk(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		risk, err := deps.Trading.GetRiskInfo(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, risk)
	}
}

func handleOrders(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := deps.Trading.QueryOrders(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

func handleTrades(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := deps.Trading.QueryTrades(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, out)
	}
}

type submitOrderRequest struct {
	StockCode string  `json:"stock_code"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
	Volume    int64   `json:"volume"`
	Price     float64 `json:"price"`
}

func handleSubmitOrder(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		side, ok := adapter.ParseOrderSide(req.Side)
		if !ok {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "side must be BUY or SELL"))
			return
		}
		otype, ok := adapter.ParseOrderType(req.OrderType)
		if !ok {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "order_type must be LIMIT or MARKET"))
			return
		}
		res, err := deps.Trading.SubmitOrder(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter, adapter.Order{
			Symbol: req.StockCode, Side: side, Type: otype, Volume: req.Volume, Price: req.Price,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"order_id": res.Order.OrderID, "simulated": res.Simulated, "status": res.Order.Status})
	}
}

type cancelOrderRequest struct {
	OrderID string `json:"order_id"`
}

func handleCancelOrder(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, gwerrors.New(gwerrors.InvalidArgument, "malformed request body"))
			return
		}
		res, err := deps.Trading.CancelOrder(c.Request.Context(), tradesession.ID(c.Param("sid")), deps.Adapter, req.OrderID)
		if err != nil {
			writeError(c, err)
			return
		}
		writeOK(c, gin.H{"success": true, "simulated": res.Simulated})
	}
}
