package mail

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"smtp permanent refusal", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, OutcomeRejected},
		{"wrapped permanent refusal", fmt.Errorf("send: %w", &textproto.Error{Code: 554, Msg: "relay denied"}), OutcomeRejected},
		{"smtp transient", &textproto.Error{Code: 421, Msg: "try again later"}, OutcomeServerError},
		{"dial failure", errors.New("dial tcp: connection refused"), OutcomeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestLogSender(t *testing.T) {
	s := &LogSender{Log: zap.NewNop()}
	out := s.Send(context.Background(), "a@x.com", "Alice", "Hello", "body")
	assert.Equal(t, OutcomeSent, out)
}
