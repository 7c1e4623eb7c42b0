// Package server exposes HTTP handlers, including WebSocket upgrades,
// health checks, and the built-in test page.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler handles WebSocket upgrade requests and manages client
// connections. It validates that the request uses the GET method, upgrades
// the HTTP connection to WebSocket, registers a new Client with the hub,
// and starts the client's read/write pumps.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	h := GetHub()
	if h == nil {
		http.Error(w, "Chat hub is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, h, r.RemoteAddr)
	h.Connect(client)

	go client.writePump()
	go client.readPump()
}

// HealthHandler provides a simple health check endpoint that returns server
// status. It responds with a plain text message indicating the server is
// running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Nexus chat server is running!")
}

// TestPageHandler serves an HTML test page for exercising the chat
// protocol. It provides a minimal interface to connect, join with a
// username, and exchange messages in real time.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Nexus Chat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        #users { color: #555; margin: 10px 0; }
        input[type="text"] { width: 220px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
    </style>
</head>
<body>
    <h1>Nexus Chat Test</h1>

    <div>
        <input type="text" id="usernameInput" placeholder="Username...">
        <button onclick="join()">Join</button>
    </div>
    <div id="users">Online: -</div>
    <div id="messages"></div>
    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const usersDiv = document.getElementById('users');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');

        function addLine(text) {
            const el = document.createElement('div');
            el.textContent = text;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function send(event, data) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: event, data: data || {}}));
            }
        }

        function join() {
            const username = document.getElementById('usernameInput').value.trim();
            ws = new WebSocket('ws://' + location.host + '/ws');
            ws.onopen = () => send('join', {username: username});
            ws.onclose = () => addLine('Connection closed');
            ws.onmessage = (raw) => {
                const frame = JSON.parse(raw.data);
                switch (frame.event) {
                case 'user_joined':
                    messageInput.disabled = false;
                    sendButton.disabled = false;
                    usersDiv.textContent = 'Online: ' + frame.data.users.join(', ');
                    addLine(frame.data.username + ' joined');
                    break;
                case 'user_left':
                    usersDiv.textContent = 'Online: ' + frame.data.users.join(', ');
                    addLine(frame.data.username + ' left');
                    break;
                case 'message_history':
                    frame.data.forEach(m => addLine('[' + m.timestamp + '] ' + m.username + ': ' + m.text));
                    break;
                case 'new_message':
                    addLine('[' + frame.data.timestamp + '] ' + frame.data.username + ': ' + frame.data.text);
                    break;
                case 'username_taken':
                case 'avatar_taken':
                case 'user_blocked':
                case 'user_kicked':
                    addLine(frame.data.message);
                    break;
                }
            };
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (text) {
                send('message', {text: text});
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
