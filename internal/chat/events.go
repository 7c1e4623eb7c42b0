// Package chat defines the wire events exchanged with clients and the
// parsing of inbound frames into typed requests.
package chat

import (
	"encoding/json"
	"fmt"
)

// AnonymousName is attributed to events from connections that have not
// completed a join.
const AnonymousName = "Anonymous"

// Inbound event names accepted from clients.
const (
	EventJoin             = "join"
	EventGetTakenAvatars  = "get_taken_avatars"
	EventMessage          = "message"
	EventTyping           = "typing"
	EventPrivateMessage   = "private_message"
	EventAdminGetData     = "admin_get_data"
	EventAdminBlockUser   = "admin_block_user"
	EventAdminUnblockUser = "admin_unblock_user"
	EventAdminKickUser    = "admin_kick_user"
	EventAdminDeleteUser  = "admin_delete_user"
)

// Outbound event names emitted by the hub. private_message is reused for
// both directions.
const (
	EventMessageHistory      = "message_history"
	EventOnlineUsersList     = "online_users_list"
	EventUserJoined          = "user_joined"
	EventUserLeft            = "user_left"
	EventUsernameTaken       = "username_taken"
	EventAvatarTaken         = "avatar_taken"
	EventUserBlocked         = "user_blocked"
	EventUserKicked          = "user_kicked"
	EventTakenAvatarsList    = "taken_avatars_list"
	EventNewMessage          = "new_message"
	EventUserTyping          = "user_typing"
	EventAdminData           = "admin_data"
	EventAdminActionResult   = "admin_action_result"
	EventAdminBlockedUpdate  = "admin_blocked_update"
	EventAdminUserListUpdate = "admin_user_list_update"
)

// Envelope is the JSON frame exchanged in both directions: a named event
// plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Request is a parsed inbound event. Exactly one concrete request type
// exists per inbound event name.
type Request interface {
	event() string
}

// JoinRequest claims an identity for the sending connection.
type JoinRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// GetTakenAvatarsRequest asks for the set of avatars currently in use.
type GetTakenAvatarsRequest struct{}

// MessageRequest broadcasts a chat message.
type MessageRequest struct {
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to"`
}

// TypingRequest signals that the sender is composing a message.
type TypingRequest struct{}

// PrivateMessageRequest sends a direct message to one online user.
type PrivateMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// AdminGetDataRequest asks for the roster, block list, and message count.
type AdminGetDataRequest struct{}

// AdminAction identifies one privileged roster or block-list mutation.
type AdminAction string

// Admin actions carried by AdminActionRequest.
const (
	AdminBlock   AdminAction = "block"
	AdminUnblock AdminAction = "unblock"
	AdminKick    AdminAction = "kick"
	AdminDelete  AdminAction = "delete"
)

// AdminActionRequest applies an admin action to the named user.
type AdminActionRequest struct {
	Action   AdminAction `json:"-"`
	Username string      `json:"username"`
}

func (JoinRequest) event() string            { return EventJoin }
func (GetTakenAvatarsRequest) event() string { return EventGetTakenAvatars }
func (MessageRequest) event() string         { return EventMessage }
func (TypingRequest) event() string          { return EventTyping }
func (PrivateMessageRequest) event() string  { return EventPrivateMessage }
func (AdminGetDataRequest) event() string    { return EventAdminGetData }
func (AdminActionRequest) event() string     { return EventAdminBlockUser }

// ParseRequest decodes a raw inbound frame into its typed request. Missing
// or malformed payload fields default to empty values; only a frame that is
// not a JSON envelope at all, or that names an unknown event, is rejected.
func ParseRequest(raw []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Event {
	case EventJoin:
		req := JoinRequest{}
		decodePayload(env.Data, &req)
		if req.Username == "" {
			req.Username = AnonymousName
		}
		return req, nil
	case EventGetTakenAvatars:
		return GetTakenAvatarsRequest{}, nil
	case EventMessage:
		req := MessageRequest{}
		decodePayload(env.Data, &req)
		return req, nil
	case EventTyping:
		return TypingRequest{}, nil
	case EventPrivateMessage:
		req := PrivateMessageRequest{}
		decodePayload(env.Data, &req)
		return req, nil
	case EventAdminGetData:
		return AdminGetDataRequest{}, nil
	case EventAdminBlockUser:
		return adminActionRequest(AdminBlock, env.Data), nil
	case EventAdminUnblockUser:
		return adminActionRequest(AdminUnblock, env.Data), nil
	case EventAdminKickUser:
		return adminActionRequest(AdminKick, env.Data), nil
	case EventAdminDeleteUser:
		return adminActionRequest(AdminDelete, env.Data), nil
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

func adminActionRequest(action AdminAction, data json.RawMessage) AdminActionRequest {
	req := AdminActionRequest{Action: action}
	decodePayload(data, &req)
	return req
}

// decodePayload fills v from data, treating an absent or malformed payload
// as all-defaults rather than an error.
func decodePayload(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

// Notice builds an outbound wire frame for the named event.
func Notice(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: payload})
}

// Outbound payload shapes.

// NoticePayload carries a human-readable notice for username_taken,
// avatar_taken, user_blocked, and user_kicked events.
type NoticePayload struct {
	Message      string   `json:"message"`
	TakenAvatars []string `json:"taken_avatars,omitempty"`
}

// UserJoinedPayload announces a successful join to all connections.
type UserJoinedPayload struct {
	Username     string   `json:"username"`
	Users        []string `json:"users"`
	TakenAvatars []string `json:"taken_avatars"`
}

// UserLeftPayload announces a departure to all connections.
type UserLeftPayload struct {
	Username string   `json:"username"`
	Users    []string `json:"users"`
}

// OnlineUsersPayload carries the full roster in registration order.
type OnlineUsersPayload struct {
	Users []Identity `json:"users"`
}

// TakenAvatarsPayload answers a get_taken_avatars request.
type TakenAvatarsPayload struct {
	TakenAvatars []string `json:"taken_avatars"`
}

// TypingPayload names the user currently composing a message.
type TypingPayload struct {
	Username string `json:"username"`
}

// PrivateMessagePayload delivers a direct message to its target.
type PrivateMessagePayload struct {
	From       string `json:"from"`
	FromAvatar string `json:"from_avatar"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

// AdminDataPayload answers an admin_get_data request.
type AdminDataPayload struct {
	Users        []Identity `json:"users"`
	Blocked      []string   `json:"blocked"`
	MessageCount int        `json:"message_count"`
}

// AdminActionResultPayload reports the outcome of an admin action to the
// requesting connection only.
type AdminActionResultPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AdminBlockedUpdatePayload carries the block list after a change.
type AdminBlockedUpdatePayload struct {
	Blocked []string `json:"blocked"`
}

// AdminUserListUpdatePayload carries the roster after an admin-driven
// change.
type AdminUserListUpdatePayload struct {
	Users []Identity `json:"users"`
}
