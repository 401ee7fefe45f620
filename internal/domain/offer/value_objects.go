package offer

import (
	"errors"
	"strings"
	"time"
)

const MaxMessageLength = 500

var (
	ErrInvalidWindow  = errors.New("delivery window start must be before end")
	ErrWindowInPast   = errors.New("delivery window must be in the future")
	ErrMessageTooLong = errors.New("offer message too long")
	ErrNegativePrice  = errors.New("offer price cannot be negative")
)

// DeliveryWindow is the provider's proposed delivery interval.
type DeliveryWindow struct {
	start time.Time
	end   time.Time
}

func NewDeliveryWindow(start, end time.Time, now time.Time) (DeliveryWindow, error) {
	if !start.Before(end) {
		return DeliveryWindow{}, ErrInvalidWindow
	}
	if !start.After(now) {
		return DeliveryWindow{}, ErrWindowInPast
	}
	return DeliveryWindow{start: start, end: end}, nil
}

func ReconstructDeliveryWindow(start, end time.Time) DeliveryWindow {
	return DeliveryWindow{start: start, end: end}
}

func (w DeliveryWindow) Start() time.Time        { return w.start }
func (w DeliveryWindow) End() time.Time          { return w.end }
func (w DeliveryWindow) Duration() time.Duration { return w.end.Sub(w.start) }

type Message struct {
	value string
}

func NewMessage(value string) (Message, error) {
	value = strings.TrimSpace(value)
	if len(value) > MaxMessageLength {
		return Message{}, ErrMessageTooLong
	}
	return Message{value: value}, nil
}

func (m Message) String() string { return m.value }
func (m Message) IsEmpty() bool  { return m.value == "" }

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 { return m.cents }
