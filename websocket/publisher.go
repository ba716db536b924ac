package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mklimuk/pulse/metrics"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	JSONContentType = "application/json"
)

type Logger interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Debugf(string, ...interface{})
}

type Time struct {
	time.Time
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

type Conn struct {
	ws    *websocket.Conn
	Peer  string `json:"peer"`
	Since Time   `json:"since"`
}

func NewConn(peer string, conn *websocket.Conn) *Conn {
	return &Conn{
		ws:    conn,
		Peer:  peer,
		Since: Time{time.Now()},
	}
}

// Publisher is a debugging tap: it implements metrics.Client and streams every
// written record as JSON to connected websocket peers.
type Publisher struct {
	mx          sync.Mutex
	connections map[string]*Conn
	logger      Logger
	enabled     bool
}

func NewPublisher(logger Logger) *Publisher {
	return &Publisher{
		connections: map[string]*Conn{},
		logger:      logger,
	}
}

func (pub *Publisher) Connections() int {
	pub.mx.Lock()
	defer pub.mx.Unlock()
	return len(pub.connections)
}

type recordView struct {
	Name   string          `json:"name"`
	Tags   []metrics.Tag   `json:"tags"`
	Fields []metrics.Field `json:"fields"`
}

func (pub *Publisher) WriteMetric(ctx context.Context, rec metrics.Record) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	msg := recordView{Name: rec.Name, Tags: rec.Tags(), Fields: rec.Fields()}
	var wg sync.WaitGroup
	pub.mx.Lock()
	for peer, conn := range pub.connections {
		wg.Add(1)
		go pub.write(ctx, peer, conn, msg, &wg)
	}
	pub.mx.Unlock()
	wg.Wait()
	return nil
}

// SubscribeHandler streams written records to websockets
func (pub *Publisher) SubscribeHandler(ctx context.Context) http.HandlerFunc {
	pub.mx.Lock()
	pub.enabled = true
	pub.mx.Unlock()
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, struct {
				Error string `json:"error"`
			}{err.Error()}, pub.logger)
			return
		}
		pub.mx.Lock()
		prev := pub.connections[r.RemoteAddr]
		pub.mx.Unlock()
		if prev != nil {
			err = prev.ws.Close(websocket.StatusGoingAway, "received another connection from peer")
			if err != nil {
				pub.logger.Infof("could not close previous connection from peer %s", r.RemoteAddr)
			}
		}
		conn := NewConn(r.RemoteAddr, ws)
		go func(addr string) {
			for {
				msg, reader, err := ws.Reader(ctx)
				if err != nil {
					var ce websocket.CloseError
					switch {
					case errors.As(err, &ce):
						pub.logger.Infof("websocket from %s closed with status (%d) %s", addr, ce.Code, ce.Reason)
					case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
						pub.logger.Infof("context is no longer valid: %v", err)
					default:
						pub.logger.Infof("websocket error: %v", err)
					}
					pub.mx.Lock()
					delete(pub.connections, addr)
					pub.mx.Unlock()
					return
				}
				if msg == websocket.MessageBinary {
					pub.logger.Infof("received binary message from %s", addr)
					continue
				}
				var buf bytes.Buffer
				_, _ = io.Copy(&buf, reader)
				pub.logger.Debugf("received message from %s: %s", addr, buf.String())
			}
		}(r.RemoteAddr)
		pub.mx.Lock()
		pub.connections[r.RemoteAddr] = conn
		pub.mx.Unlock()
	}
}

func (pub *Publisher) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pub.mx.Lock()
		connections := make(map[string]*Conn, len(pub.connections))
		for peer, conn := range pub.connections {
			connections[peer] = conn
		}
		enabled := pub.enabled
		pub.mx.Unlock()
		writeJSON(w, http.StatusOK, struct {
			Enabled     bool             `json:"enabled"`
			Connections map[string]*Conn `json:"connections"`
		}{
			enabled,
			connections,
		}, pub.logger)
	}
}

func (pub *Publisher) write(ctx context.Context, peer string, conn *Conn, msg interface{}, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	err := wsjson.Write(ctx, conn.ws, msg)
	if err != nil {
		var wserr websocket.CloseError
		if errors.As(err, &wserr) {
			pub.logger.Infof("could not write record to websocket; closing connection from peer %s: %d", peer, wserr.Code)
		} else {
			_ = conn.ws.Close(websocket.StatusAbnormalClosure, "error writing record")
		}
		pub.drop(peer)
		return
	}
	pub.logger.Debugf("wrote record to peer %s", peer)
}

func (pub *Publisher) drop(peer string) {
	pub.mx.Lock()
	defer pub.mx.Unlock()
	delete(pub.connections, peer)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger Logger) {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(body)
	if err != nil {
		logger.Errorf("could not encode body: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(status)
	_, err = w.Write(buf.Bytes())
	if err != nil {
		logger.Errorf("could not write response: %v", err)
	}
}
