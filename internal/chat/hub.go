// Package chat coordinates connection registration, event routing, and
// fan-out for the Nexus chat system via the Hub type.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// DefaultReplayCount is how many recent messages a newly joined client
// receives when no explicit count is configured.
const DefaultReplayCount = 50

// Options tune hub limits. Zero values select the defaults.
type Options struct {
	// HistoryLimit caps the message history buffer.
	HistoryLimit int
	// ReplayCount is how many recent messages are replayed on join.
	ReplayCount int
}

// inbound couples a parsed request with the connection it arrived on.
type inbound struct {
	conn Conn
	req  Request
}

// Hub owns the identity registry, block list, and message history, and
// routes every inbound event through a single event loop so that no two
// events interleave their reads and writes of the shared registries.
type Hub struct {
	registry *Registry
	blocks   *BlockList
	history  *History

	conns     map[Conn]bool
	connOrder []Conn

	replay int
	now    func() time.Time

	connect    chan Conn
	disconnect chan Conn
	events     chan inbound

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub ready to run its event loop.
func NewHub(opts Options) *Hub {
	if opts.ReplayCount <= 0 {
		opts.ReplayCount = DefaultReplayCount
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:   NewRegistry(),
		blocks:     NewBlockList(),
		history:    NewHistory(opts.HistoryLimit),
		conns:      make(map[Conn]bool),
		replay:     opts.ReplayCount,
		now:        time.Now,
		connect:    make(chan Conn),
		disconnect: make(chan Conn),
		events:     make(chan inbound, 64),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Connect registers a new transport connection with the hub.
func (h *Hub) Connect(conn Conn) {
	select {
	case h.connect <- conn:
	case <-h.ctx.Done():
	}
}

// Disconnect removes a connection and its identity, if any. Signaling a
// disconnect more than once is harmless.
func (h *Hub) Disconnect(conn Conn) {
	select {
	case h.disconnect <- conn:
	case <-h.ctx.Done():
	}
}

// Handle submits a parsed inbound request for processing.
func (h *Hub) Handle(conn Conn, req Request) {
	select {
	case h.events <- inbound{conn: conn, req: req}:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's event loop. It should be called in its own
// goroutine; every mutation of the registry, block list, and history
// happens here, one event at a time.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case conn := <-h.connect:
			h.addConn(conn)
		case conn := <-h.disconnect:
			h.removeConn(conn)
		case ev := <-h.events:
			h.dispatch(ev.conn, ev.req)
		}
	}
}

// Shutdown stops the event loop, which closes every live connection. It
// returns once the loop has exited or the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")
	h.cancel()

	select {
	case <-h.done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached")
		return context.DeadlineExceeded
	}
}

func (h *Hub) addConn(conn Conn) {
	if conn == nil {
		log.Printf("Received nil connection registration; skipping")
		return
	}
	if h.conns[conn] {
		return
	}
	h.conns[conn] = true
	h.connOrder = append(h.connOrder, conn)
	log.Printf("Client connected from %s. Total connections: %d", conn.RemoteAddr(), len(h.conns))
}

func (h *Hub) removeConn(conn Conn) {
	if conn == nil || !h.conns[conn] {
		return
	}
	delete(h.conns, conn)
	for i, c := range h.connOrder {
		if c == conn {
			h.connOrder = append(h.connOrder[:i], h.connOrder[i+1:]...)
			break
		}
	}
	log.Printf("Client disconnected from %s. Total connections: %d", conn.RemoteAddr(), len(h.conns))

	if id, ok := h.registry.Leave(conn); ok {
		h.broadcastDeparture(id)
	}
}

// broadcastDeparture announces that an identity left and refreshes the
// roster for everyone.
func (h *Hub) broadcastDeparture(id Identity) {
	h.sendAll(EventUserLeft, UserLeftPayload{Username: id.Username, Users: h.registry.Usernames()})
	h.sendAll(EventOnlineUsersList, OnlineUsersPayload{Users: h.registry.Roster()})
}

func (h *Hub) dispatch(conn Conn, req Request) {
	if conn == nil || !h.conns[conn] {
		return
	}

	switch r := req.(type) {
	case JoinRequest:
		h.handleJoin(conn, r)
	case GetTakenAvatarsRequest:
		h.sendOne(conn, EventTakenAvatarsList, TakenAvatarsPayload{TakenAvatars: h.registry.TakenAvatars()})
	case MessageRequest:
		h.handleMessage(conn, r)
	case TypingRequest:
		h.handleTyping(conn)
	case PrivateMessageRequest:
		h.handlePrivateMessage(conn, r)
	case AdminGetDataRequest:
		h.handleAdminData(conn)
	case AdminActionRequest:
		h.handleAdminAction(conn, r)
	default:
		log.Printf("Unhandled %s request from %s", req.event(), conn.RemoteAddr())
	}
}

func (h *Hub) handleJoin(conn Conn, req JoinRequest) {
	if h.blocks.IsBlocked(req.Username) {
		h.sendOne(conn, EventUserBlocked, NoticePayload{Message: "You are blocked from this chat"})
		return
	}

	if err := h.registry.Join(conn, req.Username, req.Avatar); err != nil {
		switch {
		case errors.Is(err, ErrNameTaken):
			h.sendOne(conn, EventUsernameTaken, NoticePayload{Message: "Username is already taken"})
		case errors.Is(err, ErrAvatarTaken):
			h.sendOne(conn, EventAvatarTaken, NoticePayload{
				Message:      "Avatar is already taken",
				TakenAvatars: h.registry.TakenAvatars(),
			})
		default:
			log.Printf("Join failed for %s: %v", conn.RemoteAddr(), err)
		}
		return
	}

	h.sendOne(conn, EventMessageHistory, h.history.Recent(h.replay))
	h.sendAll(EventOnlineUsersList, OnlineUsersPayload{Users: h.registry.Roster()})
	h.sendAll(EventUserJoined, UserJoinedPayload{
		Username:     req.Username,
		Users:        h.registry.Usernames(),
		TakenAvatars: h.registry.TakenAvatars(),
	})
	log.Printf("Client %s joined as %q. Online users: %d", conn.RemoteAddr(), req.Username, h.registry.Len())
}

func (h *Hub) handleMessage(conn Conn, req MessageRequest) {
	author := h.identityOrAnonymous(conn)
	msg := Message{
		ID:        uuid.NewString(),
		Username:  author.Username,
		Avatar:    author.Avatar,
		Text:      req.Text,
		Timestamp: h.now().Format("15:04"),
		ReplyTo:   req.ReplyTo,
	}
	h.history.Append(msg)
	h.sendAll(EventNewMessage, msg)
}

func (h *Hub) handleTyping(conn Conn) {
	author := h.identityOrAnonymous(conn)
	h.sendAllExcept(conn, EventUserTyping, TypingPayload{Username: author.Username})
}

func (h *Hub) handlePrivateMessage(conn Conn, req PrivateMessageRequest) {
	// Silently dropped when the sender is unidentified, the text is
	// empty, or the target is offline.
	sender, ok := h.registry.Identity(conn)
	if !ok || req.Text == "" {
		return
	}
	target, ok := h.registry.LookupByName(req.To)
	if !ok {
		return
	}
	h.sendOne(target, EventPrivateMessage, PrivateMessagePayload{
		From:       sender.Username,
		FromAvatar: sender.Avatar,
		Text:       req.Text,
		Timestamp:  h.now().Format("15:04"),
	})
}

// identityOrAnonymous resolves the sender's identity, falling back to a
// synthetic anonymous one for connections that never joined. Unidentified
// senders are deliberately not rejected; this mirrors the permissive
// behavior clients depend on.
func (h *Hub) identityOrAnonymous(conn Conn) Identity {
	if id, ok := h.registry.Identity(conn); ok {
		return id
	}
	return Identity{Username: AnonymousName}
}

func (h *Hub) handleAdminData(conn Conn) {
	h.sendOne(conn, EventAdminData, AdminDataPayload{
		Users:        h.registry.Roster(),
		Blocked:      h.blocks.List(),
		MessageCount: h.history.Len(),
	})
}

func (h *Hub) handleAdminAction(conn Conn, req AdminActionRequest) {
	if req.Username == "" {
		h.sendOne(conn, EventAdminActionResult, AdminActionResultPayload{Message: ErrMissingUsername.Error()})
		return
	}

	switch req.Action {
	case AdminBlock:
		h.adminBlock(conn, req.Username)
	case AdminUnblock:
		h.adminUnblock(conn, req.Username)
	case AdminKick:
		h.adminKick(conn, req.Username)
	case AdminDelete:
		h.adminDelete(conn, req.Username)
	default:
		log.Printf("Unknown admin action %q from %s", req.Action, conn.RemoteAddr())
	}
}

func (h *Hub) adminBlock(admin Conn, username string) {
	h.blocks.Block(username)
	if target, ok := h.registry.LookupByName(username); ok {
		h.expel(target, EventUserBlocked, "You have been blocked by an administrator")
	}
	h.sendOne(admin, EventAdminActionResult, AdminActionResultPayload{
		Success: true,
		Message: fmt.Sprintf("%s has been blocked", username),
	})
	h.sendAll(EventAdminBlockedUpdate, AdminBlockedUpdatePayload{Blocked: h.blocks.List()})
	h.sendAll(EventAdminUserListUpdate, AdminUserListUpdatePayload{Users: h.registry.Roster()})
}

func (h *Hub) adminUnblock(admin Conn, username string) {
	h.blocks.Unblock(username)
	h.sendOne(admin, EventAdminActionResult, AdminActionResultPayload{
		Success: true,
		Message: fmt.Sprintf("%s has been unblocked", username),
	})
	h.sendAll(EventAdminBlockedUpdate, AdminBlockedUpdatePayload{Blocked: h.blocks.List()})
}

func (h *Hub) adminKick(admin Conn, username string) {
	target, ok := h.registry.LookupByName(username)
	if !ok {
		h.sendOne(admin, EventAdminActionResult, AdminActionResultPayload{
			Message: fmt.Sprintf("%s is not online", username),
		})
		return
	}
	h.expel(target, EventUserKicked, "You have been kicked by an administrator")
	h.sendOne(admin, EventAdminActionResult, AdminActionResultPayload{
		Success: true,
		Message: fmt.Sprintf("%s has been kicked", username),
	})
	h.sendAll(EventAdminUserListUpdate, AdminUserListUpdatePayload{Users: h.registry.Roster()})
}

// adminDelete removes a block-list entry without touching live identities.
// It intentionally shares the semantics of adminUnblock; both exist as
// distinct named operations for interface compatibility.
func (h *Hub) adminDelete(admin Conn, username string) {
	h.blocks.Unblock(username)
	h.sendOne(admin, EventAdminActionResult, AdminActionResultPayload{
		Success: true,
		Message: fmt.Sprintf("%s has been deleted from the block list", username),
	})
	h.sendAll(EventAdminBlockedUpdate, AdminBlockedUpdatePayload{Blocked: h.blocks.List()})
}

// expel notifies a connection of its removal, unbinds its identity,
// broadcasts the departure, and closes the connection. The notice is
// queued before the close so the transport can flush it.
func (h *Hub) expel(target Conn, event, reason string) {
	h.sendOne(target, event, NoticePayload{Message: reason})
	h.removeConn(target)
	if err := target.Close(); err != nil {
		log.Printf("Error closing expelled connection %s: %v", target.RemoteAddr(), err)
	}
}

func (h *Hub) sendOne(conn Conn, event string, data any) {
	payload, err := Notice(event, data)
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return
	}
	if !conn.Deliver(payload) {
		h.evict(conn)
	}
}

func (h *Hub) sendAll(event string, data any) {
	h.fanOut(nil, event, data)
}

func (h *Hub) sendAllExcept(skip Conn, event string, data any) {
	h.fanOut(skip, event, data)
}

// fanOut delivers one encoded payload to every live connection except
// skip. Each delivery is an isolated attempt; a failing recipient never
// aborts the others.
func (h *Hub) fanOut(skip Conn, event string, data any) {
	payload, err := Notice(event, data)
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return
	}

	var failed []Conn
	for _, conn := range h.connOrder {
		if conn == skip {
			continue
		}
		if !conn.Deliver(payload) {
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		h.evict(conn)
	}
}

// evict drops a connection whose send buffer stopped accepting payloads.
func (h *Hub) evict(conn Conn) {
	if !h.conns[conn] {
		return
	}
	log.Printf("Client from %s removed due to full send buffer", conn.RemoteAddr())
	h.removeConn(conn)
	if err := conn.Close(); err != nil {
		log.Printf("Error closing evicted connection %s: %v", conn.RemoteAddr(), err)
	}
}

func (h *Hub) closeAll() {
	log.Printf("Shutting down %d client connections...", len(h.conns))
	for _, conn := range h.connOrder {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing client connection from %s: %v", conn.RemoteAddr(), err)
		}
	}
}
