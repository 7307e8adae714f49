package server

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingLogger keeps every formatted line
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) Printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-123", messageChan, nil)

	testMessage := "Test log message"
	logger.Printf("%s\n", testMessage)

	select {
	case msg := <-messageChan:
		expectedMessage := testMessage + "\n"
		if msg.Message != expectedMessage {
			t.Errorf("Expected message '%s', got '%s'", expectedMessage, msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if msg.RenderID != "test-render-123" {
			t.Errorf("Expected render ID 'test-render-123', got '%s'", msg.RenderID)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-456", messageChan, nil)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Printf("%s\n", msg)
	}

	for i, expected := range messages {
		select {
		case msg := <-messageChan:
			if msg.Message != expected+"\n" {
				t.Errorf("Message %d: expected '%s', got '%s'", i, expected+"\n", msg.Message)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-render-789", messageChan, nil)

	logger.Printf("Message 1\n")

	// These must not block even though the channel is full
	logger.Printf("Message 2\n")
	logger.Printf("Message 3\n")

	msg := <-messageChan
	if msg.Message != "Message 1\n" {
		t.Errorf("Expected the first message to be kept, got '%s'", msg.Message)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("test-render-nil", nil, nil)

	// This should not panic
	logger.Printf("Test message with nil channel\n")
}

func TestWebLogger_ForwardsToServerLogger(t *testing.T) {
	serverLogger := &recordingLogger{}
	logger := NewWebLogger("render-1", nil, serverLogger)

	logger.Printf("Pass %d completed\n", 3)

	if len(serverLogger.lines) != 1 {
		t.Fatalf("Expected 1 server log line, got %d", len(serverLogger.lines))
	}
	line := serverLogger.lines[0]
	if !strings.HasPrefix(line, "[render-1] ") || !strings.Contains(line, "Pass 3 completed") {
		t.Errorf("Unexpected server log line: %q", line)
	}
}
