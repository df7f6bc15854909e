package speech

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	speechmodel "github.com/PM183/Bloom/internal/model/speech"
)

// client is one attached browser tab: the side that owns the actual
// speech-synthesis engine. The server sends speak/cancel commands and the
// client reports its voice inventory and per-utterance completion.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	voices  []speechmodel.Voice
	pending map[string]*speechmodel.Utterance
	closed  bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		pending: make(map[string]*speechmodel.Utterance),
	}
}

func (c *client) voiceList() []speechmodel.Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]speechmodel.Voice(nil), c.voices...)
}

func (c *client) setVoices(voices []speechmodel.Voice) {
	c.mu.Lock()
	c.voices = append([]speechmodel.Voice(nil), voices...)
	c.mu.Unlock()
}

// speak registers the utterance before the command goes out so a completion
// frame can never race past its own bookkeeping.
func (c *client) speak(utt *speechmodel.Utterance) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return websocket.ErrCloseSent
	}
	c.pending[utt.ID] = utt
	c.mu.Unlock()

	if err := c.writeJSON(outgoingMessage{
		Type:      "speak",
		Data:      utt,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		c.mu.Lock()
		delete(c.pending, utt.ID)
		c.mu.Unlock()
		return err
	}
	return nil
}

// cancel tells the client to drop all queued and active utterances. Pending
// hooks are detached without firing: a canceled job must not touch state
// that now belongs to its successor.
func (c *client) cancel() {
	c.mu.Lock()
	c.pending = make(map[string]*speechmodel.Utterance)
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	if err := c.writeJSON(outgoingMessage{
		Type:      "cancel",
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		log.Printf("[websocket] failed to send cancel: %v", err)
	}
}

// finish resolves one utterance reported done or failed by the client.
func (c *client) finish(id string, playbackErr error) {
	c.mu.Lock()
	utt, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()

	if !ok {
		return
	}

	if playbackErr != nil {
		if utt.OnError != nil {
			utt.OnError(playbackErr)
		}
		return
	}
	if utt.OnEnd != nil {
		utt.OnEnd()
	}
}

// close fails every pending utterance so no owner is left waiting on a
// connection that is gone.
func (c *client) close(reason error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]*speechmodel.Utterance)
	c.mu.Unlock()

	for _, utt := range pending {
		if utt.OnError != nil {
			utt.OnError(reason)
		}
	}
	c.conn.Close()
}

func (c *client) writeJSON(msg outgoingMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}
