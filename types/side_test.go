package types

import (
	"errors"
	"testing"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Side
		wantErr error
	}{
		{"lowercase buy", "buy", SideTypeBuy, nil},
		{"uppercase sell", "SELL", SideTypeSell, nil},
		{"mixed case", "Buy", SideTypeBuy, nil},
		{"padded", " sell ", SideTypeSell, nil},
		{"unknown word", "hold", "", UnknownSideErr},
		{"empty", "", "", UnknownSideErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSide(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseSide(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSide(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTradeRecordDelta(t *testing.T) {
	buy := TradeRecord{Side: SideTypeBuy, Amount: 10}
	if buy.Delta() != 10 || buy.BuyAmount() != 10 || buy.SellAmount() != 0 {
		t.Errorf("buy record: delta=%d buy=%d sell=%d", buy.Delta(), buy.BuyAmount(), buy.SellAmount())
	}
	sell := TradeRecord{Side: SideTypeSell, Amount: 10}
	if sell.Delta() != -10 || sell.BuyAmount() != 0 || sell.SellAmount() != 10 {
		t.Errorf("sell record: delta=%d buy=%d sell=%d", sell.Delta(), sell.BuyAmount(), sell.SellAmount())
	}
}
