package request

import (
	"aguamarket/internal/domain/request"
)

type CreateRequestRequest struct {
	AmountLiters  int    `json:"amount_liters" binding:"required"`
	Address       string `json:"address" binding:"required"`
	IsUrgent      bool   `json:"is_urgent"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash transfer"`
}

type CreateRequestData struct {
	Amount        request.Amount
	Address       request.Address
	PaymentMethod request.PaymentMethod
}

func (r CreateRequestRequest) ToDomain() (*CreateRequestData, error) {
	amount, err := request.NewAmount(r.AmountLiters)
	if err != nil {
		return nil, err
	}

	address, err := request.NewAddress(r.Address)
	if err != nil {
		return nil, err
	}

	return &CreateRequestData{
		Amount:        amount,
		Address:       address,
		PaymentMethod: request.PaymentMethod(r.PaymentMethod),
	}, nil
}

type CancelRequestRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
