package email

import (
	"context"
	"fmt"

	"github.com/Paul01001000/spacematch/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify user %d about %s for space %d on %s %s-%s\n",
		event.UserID, event.Type, event.SpaceID,
		event.Date.Format("2006-01-02"), event.StartTime.Format("15:04"), event.EndTime.Format("15:04"))
	return nil
}
