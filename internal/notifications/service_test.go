package notifications

import (
	"context"
	"errors"
	"net/smtp"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    map[string]string
	failFor map[string]bool
}

func (r *recordingSender) SendEmail(_ context.Context, to, subject, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[to] {
		return errors.New("mailbox unavailable")
	}
	if r.sent == nil {
		r.sent = map[string]string{}
	}
	r.sent[to] = subject
	return nil
}

func params() Params {
	return Params{
		SharePointID: uuid.New(),
		Title:        "Q3 contract",
		Link:         "https://docs.example.com/q3.pdf",
		Deadline:     time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC),
		ActorName:    "carol",
	}
}

func TestSendBatchIsolatesFailures(t *testing.T) {
	sender := &recordingSender{failFor: map[string]bool{"bad@example.com": true}}
	svc, err := NewService(sender, zap.NewNop(), ServiceConfig{PortalURL: "https://portal", Concurrency: 2})
	require.NoError(t, err)

	msgs := []Message{
		{Kind: KindManagerCreation, To: Recipient{Email: "m1@example.com"}, Params: params()},
		{Kind: KindManagerCreation, To: Recipient{Email: "bad@example.com"}, Params: params()},
		{Kind: KindManagerCreation, To: Recipient{Email: ""}, Params: params()},
		{Kind: KindManagerCreation, To: Recipient{Email: "m2@example.com"}, Params: params()},
	}
	outcomes := svc.SendBatch(context.Background(), msgs)

	require.Len(t, outcomes, 4)
	assert.True(t, outcomes[0].OK())
	assert.False(t, outcomes[1].OK())
	assert.Equal(t, "mailbox unavailable", outcomes[1].Error)
	assert.False(t, outcomes[2].OK())
	assert.True(t, outcomes[3].OK())
	assert.Len(t, sender.sent, 2)
}

func TestRenderVariants(t *testing.T) {
	tm, err := NewTemplateManager("https://portal/")
	require.NoError(t, err)

	p := params()
	p.Rejected = true
	p.Reason = "bad link"
	subject, body, err := tm.Render(Message{Kind: KindDisapproval, To: Recipient{Name: "dave"}, Params: p})
	require.NoError(t, err)
	assert.Equal(t, "Document rejected: Q3 contract", subject)
	assert.Contains(t, body, "Reason: bad link")
	assert.Contains(t, body, "https://portal/sharepoints/"+p.SharePointID.String())

	p = params()
	p.Relaunched = true
	subject, _, err = tm.Render(Message{Kind: KindManagerCreation, Params: p})
	require.NoError(t, err)
	assert.Equal(t, "Relaunched document awaiting your approval: Q3 contract", subject)

	_, _, err = tm.Render(Message{Kind: Kind("bogus")})
	assert.Error(t, err)
}

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sesv2.SendEmailOutput), args.Error(1)
}

func TestSESSenderBuildsSimpleMessage(t *testing.T) {
	client := new(MockSES)
	ctx := context.Background()
	client.On("SendEmail", ctx, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return *in.FromEmailAddress == "portal@example.com" &&
			in.Destination.ToAddresses[0] == "u1@example.com" &&
			*in.Content.Simple.Subject.Data == "hello"
	})).Return(&sesv2.SendEmailOutput{}, nil)

	err := NewSESSender(client, "portal@example.com").SendEmail(ctx, "u1@example.com", "hello", "body")
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSMTPSenderFormatsMessage(t *testing.T) {
	var gotAddr string
	var gotMsg []byte
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 25, FromAddress: "portal@example.com"})
	s.sendMail = func(addr string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotAddr, gotMsg = addr, msg
		return nil
	}

	require.NoError(t, s.SendEmail(context.Background(), "u1@example.com", "subj", "text"))
	assert.Equal(t, "smtp.example.com:25", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: subj\r\n")

	assert.Error(t, s.SendEmail(context.Background(), "not-an-address", "subj", "text"))
}
