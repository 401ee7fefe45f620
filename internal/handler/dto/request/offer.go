package request

import (
	"time"

	"aguamarket/internal/domain/offer"
)

type SubmitOfferRequest struct {
	WindowStart time.Time `json:"window_start" binding:"required"`
	WindowEnd   time.Time `json:"window_end" binding:"required"`
	Message     *string   `json:"message,omitempty"`
}

type SubmitOfferData struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Message     offer.Message
}

// ToDomain validates the free-form parts; window ordering against the
// clock is the factory's job.
func (r SubmitOfferRequest) ToDomain() (*SubmitOfferData, error) {
	var msg offer.Message
	if r.Message != nil {
		m, err := offer.NewMessage(*r.Message)
		if err != nil {
			return nil, err
		}
		msg = m
	}

	return &SubmitOfferData{
		WindowStart: r.WindowStart,
		WindowEnd:   r.WindowEnd,
		Message:     msg,
	}, nil
}
