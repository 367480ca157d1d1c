package notify

import (
	"bufio"
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts one message without auth and returns its DATA section.
func fakeSMTP(t *testing.T) (string, int, <-chan string) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	received := make(chan string, 1)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 fake ESMTP")
		var data strings.Builder
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			command := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(command, "EHLO"), strings.HasPrefix(command, "HELO"):
				_ = tp.PrintfLine("250 fake")
			case strings.HasPrefix(command, "MAIL FROM"), strings.HasPrefix(command, "RCPT TO"):
				_ = tp.PrintfLine("250 ok")
			case command == "DATA":
				_ = tp.PrintfLine("354 go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				data.WriteString(strings.Join(lines, "\n"))
				_ = tp.PrintfLine("250 queued")
			case command == "QUIT":
				_ = tp.PrintfLine("221 bye")
				received <- data.String()
				return
			default:
				_ = tp.PrintfLine("250 ok")
			}
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, received
}

func TestSMTPSendsPlainTextMessage(t *testing.T) {
	host, port, received := fakeSMTP(t)
	sender := NewSMTP(SMTPConfig{Host: host, Port: port, From: "no-reply@docketdesk.test"}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := sender.Send(ctx, Message{
		Kind:      "member.invited",
		Recipient: "reviewer@example.com",
		Subject:   "You are invited",
		Body:      "Line one\nLine two",
	})
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.Contains(t, data, "To: reviewer@example.com")
		assert.Contains(t, data, "Subject: You are invited")
		assert.Contains(t, data, "Line one\nLine two")
	case <-ctx.Done():
		t.Fatal("fake smtp server received nothing")
	}
}

func TestSMTPRejectsInvalidRecipient(t *testing.T) {
	sender := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 1}, nil)
	assert.Error(t, sender.Send(context.Background(), Message{Recipient: "not an address"}))
}

func TestBuildMessageNormalisesLineEndings(t *testing.T) {
	raw := string(buildMessage("from@test", Message{Recipient: "to@test", Subject: "Hi", Body: "a\nb\r\nc"}))
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\na\r\nb\r\nc"))
	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(raw)))
	header, err := reader.ReadMIMEHeader()
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=UTF-8", header.Get("Content-Type"))
}

type countingObserver struct {
	kinds []string
}

func (c *countingObserver) NotificationSent(kind string, _ error) {
	c.kinds = append(c.kinds, kind)
}

func TestObservedLogSender(t *testing.T) {
	observer := &countingObserver{}
	sender := Observed{Next: NewLog(nil), Observer: observer}
	require.NoError(t, sender.Send(context.Background(), Message{Kind: "comment.submitted"}))
	assert.Equal(t, []string{"comment.submitted"}, observer.kinds)
}
