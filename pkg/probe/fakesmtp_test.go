package probe

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSMTPServer accepts connections and answers just enough of the SMTP
// dialogue for the smtp probe.
type fakeSMTPServer struct {
	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	commands []string
}

func startFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTPServer{listener: l}
	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		_ = l.Close()
		s.wg.Wait()
	})

	return s
}

func (s *fakeSMTPServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *fakeSMTPServer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.commands...)
}

func (s *fakeSMTPServer) serve() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.handle(conn)
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer conn.Close()

	w := bufio.NewWriter(conn)
	reply := func(line string) {
		_, _ = w.WriteString(line + "\r\n")
		_ = w.Flush()
	}

	reply("220 fake.test ESMTP")

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}

		verb := strings.ToUpper(strings.Fields(strings.TrimSpace(line) + " ")[0])
		s.mu.Lock()
		s.commands = append(s.commands, verb)
		s.mu.Unlock()

		switch verb {
		case "EHLO", "HELO":
			reply("250 fake.test")
		case "NOOP":
			reply("250 OK")
		case "QUIT":
			reply("221 Bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}
