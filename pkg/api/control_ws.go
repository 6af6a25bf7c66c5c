package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

// controlMessage is one key edge as sent by the operator's browser.
type controlMessage struct {
	Type string `json:"type"` // "keydown" or "keyup"
	Key  string `json:"key"`  // KeyboardEvent.key value
}

// ControlSocketHandler turns websocket key messages into KeyEvents on the
// key queue. The browser is the keyboard device here: unlike a terminal it
// delivers real key-up edges, which the press/release state machine needs.
func ControlSocketHandler(conn *websocket.Conn, logger customlog.Logger, keys *queue.Queue[robot.KeyEvent]) {
	session := uuid.NewString()
	logger.Infof("control websocket connected: %s (session %s)", conn.RemoteAddr(), session)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("control websocket read error: %v", err)
			} else if !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Infof("control websocket closed: %v", err)
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("ignoring non-text control message type: %d", mt)
			continue
		}

		var cm controlMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			logger.Warnf("malformed control message: %v", err)
			continue
		}

		var down bool
		switch cm.Type {
		case "keydown":
			down = true
		case "keyup":
			down = false
		default:
			logger.Warnf("unknown control message type '%s'", cm.Type)
			continue
		}

		key, ok := robot.ParseKey(cm.Key)
		if !ok {
			logger.Debugf("ignoring unmapped key '%s'", cm.Key)
			continue
		}

		if !keys.TrySend(robot.KeyEvent{Key: key, Down: down}) {
			logger.Warnf("key queue full, dropping %s '%s'", cm.Type, cm.Key)
		}
	}

	logger.Infof("control websocket disconnected (session %s)", session)
}
