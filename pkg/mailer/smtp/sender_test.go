package smtp_test

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anonmail/pkg/mailer"
	"github.com/dmitrymomot/anonmail/pkg/mailer/smtp"
)

const (
	testUser = "relay@example.com"
	testPass = "app-password"
)

// fakeServer is a minimal SMTP server that accepts PLAIN auth over TLS.
type fakeServer struct {
	ln        net.Listener
	tlsConfig *tls.Config
	startTLS  bool

	mu       sync.Mutex
	messages []string
	rcpts    []string
}

// newFakeServer returns a server and a client TLS config that trusts it.
// The certificate comes from httptest and is valid for 127.0.0.1.
func newFakeServer(t *testing.T, startTLS bool) (*fakeServer, *tls.Config) {
	t.Helper()

	certSrv := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(certSrv.Close)

	serverTLS := &tls.Config{Certificates: certSrv.TLS.Certificates}
	clientTLS := &tls.Config{RootCAs: certSrv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs}

	var (
		ln  net.Listener
		err error
	)
	if startTLS {
		ln, err = net.Listen("tcp", "127.0.0.1:0")
	} else {
		ln, err = tls.Listen("tcp", "127.0.0.1:0", serverTLS)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	f := &fakeServer{ln: ln, tlsConfig: serverTLS, startTLS: startTLS}
	go f.acceptLoop()
	return f, clientTLS
}

func (f *fakeServer) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeServer) acceptLoop() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.serve(conn)
	}
}

func (f *fakeServer) serve(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewConn(conn)
	upgraded := false
	_ = tp.PrintfLine("220 fake ESMTP")

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb, arg, _ := strings.Cut(line, " ")

		switch strings.ToUpper(verb) {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250-fake")
			if f.startTLS && !upgraded {
				_ = tp.PrintfLine("250-STARTTLS")
			}
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "STARTTLS":
			_ = tp.PrintfLine("220 ready")
			tlsConn := tls.Server(conn, f.tlsConfig)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			tp = textproto.NewConn(conn)
			upgraded = true
		case "AUTH":
			_, encoded, _ := strings.Cut(arg, " ")
			raw, _ := base64.StdEncoding.DecodeString(encoded)
			if string(raw) == "\x00"+testUser+"\x00"+testPass {
				_ = tp.PrintfLine("235 2.7.0 Accepted")
			} else {
				_ = tp.PrintfLine("535 5.7.8 Username and Password not accepted")
			}
		case "MAIL":
			_ = tp.PrintfLine("250 OK")
		case "RCPT":
			f.mu.Lock()
			f.rcpts = append(f.rcpts, arg)
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.messages = append(f.messages, string(data))
			f.mu.Unlock()
			_ = tp.PrintfLine("250 OK queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 not implemented")
		}
	}
}

func (f *fakeServer) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func testEmail() *mailer.Email {
	return &mailer.Email{
		To:      []string{"bob@example.com"},
		Subject: "You got an anonymous message",
		HTML:    "<p>hello there</p>",
		Text:    "hello there",
	}
}

func TestSender_Send_ImplicitTLS(t *testing.T) {
	t.Parallel()

	srv, clientTLS := newFakeServer(t, false)
	s := smtp.New(smtp.Config{
		Host:        "127.0.0.1",
		Port:        srv.port(),
		TLSMode:     smtp.TLSImplicit,
		Timeout:     5 * time.Second,
		Username:    testUser,
		Password:    testPass,
		SenderEmail: testUser,
		SenderName:  "Anonymous",
		TLSConfig:   clientTLS,
	})

	require.NoError(t, s.Send(context.Background(), testEmail()))

	msgs := srv.sent()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	require.Contains(t, msg, `From: "Anonymous" <relay@example.com>`)
	require.Contains(t, msg, "To: bob@example.com")
	require.Contains(t, msg, "Subject: You got an anonymous message")
	require.Contains(t, msg, "multipart/alternative")
	require.Contains(t, msg, "hello there")
	require.NotContains(t, msg, "Reply-To")
}

func TestSender_Send_StartTLS(t *testing.T) {
	t.Parallel()

	srv, clientTLS := newFakeServer(t, true)
	s := smtp.New(smtp.Config{
		Host:        "127.0.0.1",
		Port:        srv.port(),
		TLSMode:     smtp.TLSStartTLS,
		Timeout:     5 * time.Second,
		Username:    testUser,
		Password:    testPass,
		SenderEmail: testUser,
		TLSConfig:   clientTLS,
	})

	require.NoError(t, s.Send(context.Background(), testEmail()))
	require.Len(t, srv.sent(), 1)
}

func TestSender_Send_AuthRejected(t *testing.T) {
	t.Parallel()

	srv, clientTLS := newFakeServer(t, false)
	s := smtp.New(smtp.Config{
		Host:        "127.0.0.1",
		Port:        srv.port(),
		Timeout:     5 * time.Second,
		Username:    testUser,
		Password:    "wrong",
		SenderEmail: testUser,
		TLSConfig:   clientTLS,
	})

	err := s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, mailer.ErrAuthFailed)
	require.Contains(t, mailer.TransportDetail(err), "535")
	require.Empty(t, srv.sent())
}

func TestSender_Send_HeadersCannotAddReplyTo(t *testing.T) {
	t.Parallel()

	srv, clientTLS := newFakeServer(t, false)
	s := smtp.New(smtp.Config{
		Host:        "127.0.0.1",
		Port:        srv.port(),
		Timeout:     5 * time.Second,
		Username:    testUser,
		Password:    testPass,
		SenderEmail: testUser,
		TLSConfig:   clientTLS,
	})

	email := testEmail()
	email.Headers = map[string]string{"reply-to": "sender@example.com", "X-Relay": "anonmail"}
	require.NoError(t, s.Send(context.Background(), email))

	msg := srv.sent()[0]
	require.NotContains(t, msg, "sender@example.com")
	require.Contains(t, msg, "X-Relay: anonmail")
}

func TestSender_Send_ConnectionRefused(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := smtp.New(smtp.Config{
		Host:        "127.0.0.1",
		Port:        port,
		Timeout:     time.Second,
		Username:    testUser,
		Password:    testPass,
		SenderEmail: testUser,
	})

	err = s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	require.NotErrorIs(t, err, mailer.ErrAuthFailed)
}

func TestSender_Send_StartTLSUnsupported(t *testing.T) {
	t.Parallel()

	// An implicit-TLS server never advertises STARTTLS; speak plain TCP to a plain listener instead.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 plain")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_ = tp.PrintfLine("250 plain")
			case strings.HasPrefix(line, "QUIT"):
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 no")
			}
		}
	}()

	s := smtp.New(smtp.Config{
		Host:        "127.0.0.1",
		Port:        ln.Addr().(*net.TCPAddr).Port,
		TLSMode:     smtp.TLSStartTLS,
		Timeout:     time.Second,
		Username:    testUser,
		Password:    testPass,
		SenderEmail: testUser,
	})

	err = s.Send(context.Background(), testEmail())
	require.ErrorIs(t, err, smtp.ErrStartTLSUnsupported)
	require.ErrorIs(t, err, mailer.ErrSendFailed)
}
