package mail

import (
	"bufio"
	"net"
	"testing"
	"time"
)

func TestSendWithTimeoutClosesConnOnRejectedGreeting(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	serverSaw := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serverSaw <- err
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
		if _, err := conn.Write([]byte("554 not accepting mail\r\n")); err != nil {
			serverSaw <- err
			return
		}
		// The client must hang up after the rejected greeting; a read
		// should hit EOF instead of the deadline.
		_, err = bufio.NewReader(conn).ReadString('\n')
		serverSaw <- err
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	m := NewSMTPMailer(host, port, "", "", "noreply@example.com", "Rishta")
	if err := m.sendWithTimeout("someone@example.com", []byte("hello")); err == nil {
		t.Fatal("expected an error for a rejected greeting")
	}

	select {
	case err := <-serverSaw:
		if err == nil {
			t.Fatal("client never closed the connection after the failed greeting")
		}
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			t.Fatal("connection left open until the server deadline")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server goroutine stalled")
	}
}
