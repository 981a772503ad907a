package payment

import (
	"context"
	"fmt"

	"farmxchain/domain"
	"farmxchain/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

type (
	// SnapClient is the part of the midtrans Snap client used here.
	SnapClient interface {
		CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
	}

	PaymentService interface {
		CreatePayment(ctx context.Context, order domain.Order) (domain.CreatePaymentResponse, error)
	}

	paymentService struct {
		snap SnapClient
	}
)

// NewSnapClient builds a Snap client from SERVER_KEY and IsProd.
func NewSnapClient() SnapClient {
	env := midtrans.Sandbox
	if utils.GetConfig("IsProd") == "true" {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(utils.GetConfig("SERVER_KEY"), env)
	return &client
}

func NewPaymentService(client SnapClient) PaymentService {
	return &paymentService{snap: client}
}

// CreatePayment opens a Snap transaction for the order total. Each call uses a
// fresh transaction id so a customer can retry an abandoned payment.
func (s *paymentService) CreatePayment(ctx context.Context, order domain.Order) (domain.CreatePaymentResponse, error) {
	amount := decimal.NewFromFloat(order.Total).Round(0).IntPart()
	if amount <= 0 {
		return domain.CreatePaymentResponse{}, domain.NewValidationError("order total must be positive")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  fmt.Sprintf("%s-%s", order.ID, uuid.NewString()[:8]),
			GrossAmt: amount,
		},
	}
	if order.PlacedBy != "" {
		req.CustomerDetail = &midtrans.CustomerDetails{Email: order.PlacedBy}
	}

	resp, mErr := s.snap.CreateTransaction(req)
	if mErr != nil {
		log.Errorf("midtrans transaction for order %s: %s", order.ID, mErr.GetMessage())
		return domain.CreatePaymentResponse{}, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, mErr.GetMessage())
	}

	return domain.CreatePaymentResponse{
		OrderID:     order.ID,
		Amount:      float64(amount),
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}
