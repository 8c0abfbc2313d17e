package itch

import (
	"encoding/json"
	"strings"
	"testing"
)

// EncodeJSON is the alternate StartDownload output format selected by
// params["format"]=="json" (spec.md §4.1 download kinds) when a consumer
// wants a readable mirror of the ITCH stream instead of the binary frame.

func decodeJSON(t *testing.T, m *Message) map[string]any {
	t.Helper()
	data, err := EncodeJSON(m)
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	return obj
}

func TestEncodeJSONTypeTagPerMessageKind(t *testing.T) {
	cases := []struct {
		msg  *Message
		want string
	}{
		{&Message{Type: MsgSystemEvent, Timestamp: 1000, EventCode: 'O'}, "system_event"},
		{&Message{Type: MsgStockDirectory, Stock: "NEXO", RoundLotSize: 100}, "stock_directory"},
		{&Message{Type: MsgStockTradingAction, Stock: "NEXO", TradingState: 'T'}, "stock_trading_action"},
		{&Message{Type: MsgAddOrder, OrderRef: 42, Side: 'B', Shares: 500, Price: 125.50}, "add_order"},
		{&Message{Type: MsgAddOrderMPID, OrderRef: 42, Side: 'S', Shares: 300, Price: 99.99, MPID: "GSCO"}, "add_order_mpid"},
		{&Message{Type: MsgOrderExecuted, OrderRef: 42, Shares: 200, MatchNumber: 7}, "order_executed"},
		{&Message{Type: MsgOrderCancel, OrderRef: 42, Shares: 100}, "order_cancel"},
		{&Message{Type: MsgOrderDelete, OrderRef: 42}, "order_delete"},
		{&Message{Type: MsgOrderReplace, OrigOrderRef: 42, OrderRef: 43, Shares: 300, Price: 50.25}, "order_replace"},
		{&Message{Type: MsgTrade, OrderRef: 42, Side: 'B', Shares: 500, Stock: "NEXO", Price: 125.50, MatchNumber: 7}, "trade"},
	}
	for _, c := range cases {
		obj := decodeJSON(t, c.msg)
		if obj["type"] != c.want {
			t.Errorf("type = %v, want %s", obj["type"], c.want)
		}
	}
}

func TestEncodeJSONStockFieldIsTrimmed(t *testing.T) {
	obj := decodeJSON(t, &Message{Type: MsgStockDirectory, Stock: "NEXO", RoundLotSize: 100})
	if obj["stock"] != "NEXO" {
		t.Fatalf("stock = %v, want NEXO (no trailing pad)", obj["stock"])
	}
}

func TestEncodeJSONPriceIsFourDecimalString(t *testing.T) {
	obj := decodeJSON(t, &Message{Type: MsgAddOrder, OrderRef: 1, Side: 'B', Shares: 100, Price: 1.0})
	if price, ok := obj["price"].(string); !ok || price != "1.0000" {
		t.Fatalf("price = %v, want string 1.0000", obj["price"])
	}
}

func TestEncodeJSONUnsupportedTypeErrors(t *testing.T) {
	_, err := EncodeJSON(&Message{Type: MsgType('Z')})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected 'unsupported' error, got %v", err)
	}
}
