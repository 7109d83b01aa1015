package codec

import (
	"testing"
	"time"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

func TestExecutionRoundTrip(t *testing.T) {
	testCases := []struct {
		desc      string
		leavesQty int64
		kind      schema.ExecutionKind
	}{
		{"full fill", 0, schema.ExecutionKindFull},
		{"partial fill", 150, schema.ExecutionKindPartial},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			in := schema.Execution{
				Order: schema.Order{
					OrderID:      "X1",
					Side:         schema.OrderSideSell,
					Size:         300,
					Symbol:       "AAPL",
					TriggerPrice: decimal.RequireFromString("0"),
					Provider:     "Sim",
				},
				Fill: schema.Fill{
					ExecutionID: "Sim-7",
					Side:        schema.OrderSideSell,
					Size:        300 - tc.leavesQty,
					Price:       decimal.RequireFromString("101.25"),
					AvgPrice:    decimal.RequireFromString("101.20"),
					LeavesQty:   tc.leavesQty,
					CumQty:      300 - tc.leavesQty,
					DateTime:    time.Date(2026, 3, 9, 14, 30, 5, 250_000_000, time.UTC),
				},
				Provider: "Sim",
			}

			out, err := DecodeExecution(EncodeExecution(in))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if out.Order.OrderID != in.Order.OrderID || out.Provider != in.Provider {
				t.Fatalf("identity mismatch! got %+v", out)
			}
			if out.Fill.ExecutionID != in.Fill.ExecutionID {
				t.Fatalf("execution id mismatch! should be %s but got %s", in.Fill.ExecutionID, out.Fill.ExecutionID)
			}
			if !out.Fill.Price.Equal(in.Fill.Price) || !out.Fill.AvgPrice.Equal(in.Fill.AvgPrice) {
				t.Fatalf("price mismatch! got %+v", out.Fill)
			}
			if out.Fill.LeavesQty != tc.leavesQty || out.Fill.CumQty != in.Fill.CumQty {
				t.Fatalf("quantity mismatch! got %+v", out.Fill)
			}
			if out.Fill.Kind != tc.kind {
				t.Fatalf("kind mismatch! should be %v but got %v", tc.kind, out.Fill.Kind)
			}
			if !out.Fill.DateTime.Equal(in.Fill.DateTime) {
				t.Fatalf("date mismatch! got %v", out.Fill.DateTime)
			}
		})
	}
}

func TestOrderStatusRoundTrip(t *testing.T) {
	in := sampleOrder()
	in.Status = schema.OrderStatusSubmitted

	out, err := DecodeOrderStatus(EncodeOrderStatus(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Status != schema.OrderStatusSubmitted {
		t.Fatalf("status mismatch! should be SUBMITTED but got %v", out.Status)
	}
	if out.OrderID != in.OrderID || out.Symbol != in.Symbol || out.Provider != in.Provider {
		t.Fatalf("identity mismatch! got %+v", out)
	}
	if out.Size != in.Size || out.TIF != in.TIF {
		t.Fatalf("core mismatch! got %+v", out)
	}
}

func TestLocateRoundTrip(t *testing.T) {
	req := schema.LocateRequest{
		OrderID:  "L9",
		Symbol:   "GME",
		Size:     500,
		Provider: "Sim",
		DateTime: time.Date(2026, 3, 9, 9, 45, 0, 0, time.UTC),
	}
	gotReq, err := DecodeLocateRequest(EncodeLocateRequest(req))
	if err != nil {
		t.Fatalf("decode locate request failed: %v", err)
	}
	if gotReq.OrderID != req.OrderID || gotReq.Symbol != req.Symbol || gotReq.Size != req.Size {
		t.Fatalf("locate request mismatch! got %+v", gotReq)
	}

	for _, accepted := range []bool{true, false} {
		resp := schema.LocateResponse{
			OrderID:    "L9",
			Provider:   "Sim",
			StrategyID: "S1",
			Accepted:   accepted,
		}
		gotResp, err := DecodeLocateResponse(EncodeLocateResponse(resp))
		if err != nil {
			t.Fatalf("decode locate response failed: %v", err)
		}
		if gotResp != resp {
			t.Fatalf("locate response mismatch! should be %+v but got %+v", resp, gotResp)
		}
	}

	if _, err := DecodeLocateResponse([]byte("L9,Sim,S1,MAYBE")); !errors.Is(err, exception.ErrCodecBadDecision) {
		t.Fatalf("error mismatch! should wrap bad decision but got %v", err)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	in := schema.Position{
		Provider: "Sim",
		Symbol:   "AAPL",
		Size:     -200,
		DateTime: time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC),
	}
	out, err := DecodePosition(EncodePosition(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Provider != in.Provider || out.Symbol != in.Symbol || out.Size != in.Size {
		t.Fatalf("position mismatch! should be %+v but got %+v", in, out)
	}
}

func TestRejectionRoundTrip(t *testing.T) {
	in := schema.Rejection{
		OrderID:  "X1",
		Symbol:   "AAPL",
		Provider: "Sim",
		DateTime: time.Date(2026, 3, 9, 14, 31, 0, 0, time.UTC),
		Reason:   "symbol halted",
	}
	out, err := DecodeRejection(EncodeRejection(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.OrderID != in.OrderID || out.Reason != in.Reason || out.Provider != in.Provider {
		t.Fatalf("rejection mismatch! should be %+v but got %+v", in, out)
	}
}
