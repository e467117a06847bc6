package server

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vango-dev/dnd/internal/config"
	"github.com/vango-dev/dnd/internal/errors"
	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/protocol"
	"github.com/vango-dev/dnd/pkg/sched"
	"github.com/vango-dev/dnd/pkg/scope"
)

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("E063").WithDetail("session closed")

// Session is one WebSocket connection and the element tree it drives.
// Document, Scope and the active transfer are only touched on the loop
// goroutine.
type Session struct {
	ID string

	server  *Server
	conn    *websocket.Conn
	doc     *dom.Document
	scope   *scope.Scope
	channel *dnd.Channel
	loop    *sched.Loop
	surface *dnd.Surface

	// transfer is the DataTransfer of the drag in progress.
	transfer *dom.DataTransfer

	limiter *rate.Limiter

	sendSeq atomic.Uint64
	writeMu sync.Mutex
	closed  atomic.Bool

	logger *slog.Logger
}

func newSession(srv *Server, id string, conn *websocket.Conn, cfg *config.Config) (*Session, error) {
	logger := srv.logger.With("session", id)
	sess := &Session{
		ID:      id,
		server:  srv,
		conn:    conn,
		doc:     dom.NewDocument(),
		scope:   scope.New(),
		channel: dnd.NewChannel(),
		limiter: newLimiter(cfg),
		logger:  logger,
	}
	sess.loop = sched.NewLoop(
		sched.WithAfterTurn(sess.afterTurn),
		sched.WithLogger(logger),
	)
	sess.surface = dnd.NewSurface(sess.loop,
		dnd.WithConfig(cfg),
		dnd.WithChannel(sess.channel),
		dnd.WithObserver(srv.observer()),
		dnd.WithLogger(logger),
	)

	if err := srv.mount(&Mount{Document: sess.doc, Scope: sess.scope, Surface: sess.surface}); err != nil {
		return nil, err
	}
	return sess, nil
}

// newLimiter returns the per-session event limiter. A negative rate
// disables limiting.
func newLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.Server.EventRate < 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(cfg.Server.EventRate), cfg.Server.EventBurst)
}

// serve runs the session until the connection drops or ctx is canceled.
func (sess *Session) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer sess.Close()

	go func() {
		if err := sess.loop.Run(ctx); err != nil && err != context.Canceled {
			sess.logger.Warn("event loop stopped", "error", err)
		}
		// A canceled context stops the loop; unblock the reader too.
		sess.Close()
	}()

	// An empty turn digests the mounted scope and sends the initial patches.
	if err := sess.loop.Post(func() {}); err != nil {
		return
	}
	sess.readLoop()
}

// readLoop decodes frames until the connection fails.
func (sess *Session) readLoop() {
	readTimeout := sess.server.config.ReadTimeout()
	for {
		sess.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if !sess.closed.Load() && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				sess.logger.Warn("read error", "error", err)
				sess.countError("read")
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			sess.logger.Warn("frame decode error", "error", errors.New("E061").Wrap(err))
			sess.countError("decode")
			sess.sendError(protocol.ErrInvalidFrame, err.Error())
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			if !sess.handleEventFrame(frame.Payload) {
				return
			}
		default:
			sess.logger.Warn("unexpected frame type", "type", frame.Type)
			sess.sendError(protocol.ErrInvalidFrame, "unexpected "+frame.Type.String()+" frame")
		}
	}
}

// handleEventFrame queues the event for the loop. It returns false once the
// loop has stopped.
func (sess *Session) handleEventFrame(payload []byte) bool {
	pe, err := protocol.DecodeEvent(payload)
	if err != nil {
		sess.logger.Warn("event decode error", "error", errors.New("E062").Wrap(err))
		sess.countError("decode")
		sess.sendError(protocol.ErrInvalidEvent, err.Error())
		return true
	}
	if !sess.limiter.Allow() {
		sess.logger.Warn("event rate limit exceeded", "type", pe.Type, "hid", pe.HID)
		sess.countError("rate_limited")
		sess.sendError(protocol.ErrRateLimited, "dropped "+pe.Type.String()+" event")
		return true
	}
	if m := sess.server.metrics; m != nil {
		m.EventReceived(pe.Type.String())
	}
	return sess.loop.Post(func() { sess.dispatch(pe) }) == nil
}

// dispatch delivers a decoded event to its target. Loop goroutine only.
func (sess *Session) dispatch(pe *protocol.Event) {
	el, ok := sess.doc.ByHID(pe.HID)
	if !ok {
		sess.logger.Warn("event for unknown element", "hid", pe.HID, "type", pe.Type,
			"error", errors.New("E020").WithDetail(pe.HID))
		sess.sendError(protocol.ErrUnknownTarget, "no element "+pe.HID)
		return
	}

	var dt *dom.DataTransfer
	if pe.Type.IsDrag() {
		dt = sess.transferFor(pe)
	}
	ev := dom.NewEvent(pe.Type.String(), el, dt)
	ev.Seq = pe.Seq
	dom.Dispatch(ev)

	if pe.Type == protocol.EventDragEnd {
		sess.transfer = nil
	}
}

// transferFor returns the DataTransfer for a drag event. A dragstart opens
// a new transfer that later events of the same drag reuse, so the payload
// written at dragstart is visible to drop zones. Drags entering from
// outside the page get a transfer built from the event alone.
func (sess *Session) transferFor(pe *protocol.Event) *dom.DataTransfer {
	dt := sess.transfer
	if pe.Type == protocol.EventDragStart || dt == nil {
		dt = dom.NewDataTransfer()
		if pe.Type == protocol.EventDragStart {
			sess.transfer = dt
		}
	}

	formats := make([]string, 0, len(pe.Data))
	for format := range pe.Data {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	for _, format := range formats {
		dt.SetData(format, pe.Data[format])
	}
	if pe.EffectAllowed != "" {
		dt.EffectAllowed = pe.EffectAllowed
	}
	dt.DropEffect = pe.DropEffect
	dt.AllowSetDragImage = pe.AllowSetDragImage
	return dt
}

// afterTurn digests the scope and sends the changes of the turn.
func (sess *Session) afterTurn() {
	if err := sess.scope.Digest(); err != nil {
		sess.logger.Warn("digest failed", "error", err)
	}
	muts := sess.doc.Drain()
	if len(muts) == 0 {
		return
	}
	if err := sess.sendPatches(protocol.PatchesFromMutations(muts)); err != nil && err != ErrSessionClosed {
		sess.logger.Warn("send patches failed", "error", err)
	}
}

// sendPatches writes patches, splitting batches that exceed one frame.
func (sess *Session) sendPatches(patches []protocol.Patch) error {
	if len(patches) == 0 {
		return nil
	}
	pf := &protocol.PatchesFrame{Seq: sess.sendSeq.Add(1), Patches: patches}
	err := sess.writeFrame(protocol.FramePatches, protocol.EncodePatches(pf))
	if err != protocol.ErrFrameTooLarge || len(patches) == 1 {
		if err == nil && sess.server.metrics != nil {
			sess.server.metrics.PatchesSent(len(patches))
		}
		return err
	}
	mid := len(patches) / 2
	if err := sess.sendPatches(patches[:mid]); err != nil {
		return err
	}
	return sess.sendPatches(patches[mid:])
}

// sendError writes a non-fatal error frame.
func (sess *Session) sendError(code protocol.ErrorCode, message string) {
	payload := protocol.EncodeErrorMessage(protocol.NewError(code, message))
	if err := sess.writeFrame(protocol.FrameError, payload); err != nil && err != ErrSessionClosed {
		sess.logger.Warn("send error frame failed", "error", err)
	}
}

func (sess *Session) writeFrame(ft protocol.FrameType, payload []byte) error {
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return err
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.closed.Load() {
		return ErrSessionClosed
	}
	sess.conn.SetWriteDeadline(time.Now().Add(sess.server.config.WriteTimeout()))
	if err := sess.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		sess.countError("write")
		return errors.New("E063").Wrap(err)
	}
	return nil
}

func (sess *Session) countError(kind string) {
	if m := sess.server.metrics; m != nil {
		m.WebSocketError(kind)
	}
}

// Close stops the loop and closes the connection. It is safe to call more
// than once.
func (sess *Session) Close() {
	if sess.closed.Swap(true) {
		return
	}
	sess.loop.Close()

	sess.writeMu.Lock()
	sess.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	sess.conn.Close()
	sess.writeMu.Unlock()

	sess.server.tracer.Release(sess.doc)
	sess.server.removeSession(sess.ID)
}
