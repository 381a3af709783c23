package mail

import (
	"context"
	"errors"
	"net/textproto"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Outcome 发信结果。发信永远不向调用方抛错，失败折算成结果串，
// 由业务侧作为附带信息返回/记录。
type Outcome string

const (
	OutcomeSent        Outcome = "sent"
	OutcomeRejected    Outcome = "rejected"
	OutcomeServerError Outcome = "server error"
)

type Sender interface {
	Send(ctx context.Context, to, fullName, subject, body string) Outcome
}

// SMTPSender gomail 实现，对应线上 SMTP（如 smtp.gmail.com:465）
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewSMTP(host string, port int, username, password, from string, l *zap.Logger) *SMTPSender {
	if from == "" {
		from = username
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    l,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, fullName, subject, body string) Outcome {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", to, fullName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-done:
	}
	if err == nil {
		return OutcomeSent
	}
	out := Classify(err)
	s.log.Warn("mail send failed",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("outcome", string(out)),
		zap.Error(err),
	)
	return out
}

// Classify SMTP 永久失败（5xx，收件被拒）→ rejected，其余 → server error
func Classify(err error) Outcome {
	var te *textproto.Error
	if errors.As(err, &te) && te.Code >= 500 {
		return OutcomeRejected
	}
	return OutcomeServerError
}

// LogSender 未配置 SMTP 时的开发实现，只打日志
type LogSender struct{ Log *zap.Logger }

func (s *LogSender) Send(_ context.Context, to, fullName, subject, body string) Outcome {
	s.Log.Info("mail (log only)",
		zap.String("to", to),
		zap.String("name", fullName),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return OutcomeSent
}
