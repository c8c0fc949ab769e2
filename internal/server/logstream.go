// File: internal/server/logstream.go
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hpcloud/tail"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleLogStream follows the log file over a WebSocket, one text message
// per line. By default only new lines are sent; ?from=start replays the file
// first.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	if s.logFile == "" {
		http.Error(w, "No log file is configured.", http.StatusNotFound)
		return
	}

	whence := io.SeekEnd
	if r.URL.Query().Get("from") == "start" {
		whence = io.SeekStart
	}
	t, err := tail.TailFile(s.logFile, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Poll:     true,
		Location: &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		s.logger.Error("Failed to tail log file.", zap.String("path", s.logFile), zap.Error(err))
		http.Error(w, "Failed to read log file.", http.StatusInternalServerError)
		return
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("Failed to upgrade log stream.", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Debug("Log stream opened.", zap.String("remote_addr", r.RemoteAddr))
	gone := readUntilClosed(conn)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-gone:
			s.logger.Debug("Log stream closed by client.", zap.String("remote_addr", r.RemoteAddr))
			return
		case line, ok := <-t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				s.logger.Warn("Error reading from log file", zap.Error(line.Err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line.Text)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains client frames so pongs and close frames are handled,
// and closes the returned channel when the connection ends.
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	gone := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return gone
}
