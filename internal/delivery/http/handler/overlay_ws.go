package handler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/pkg/metrics"
	"github.com/tilequery-overlay/internal/usecase/dto"
	"go.uber.org/zap"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// wsClient - подключённый рендерер. send хранит не больше одного
// неотправленного снимка: медленный клиент получает только последний.
type wsClient struct {
	send chan []byte
}

func newWSClient() *wsClient {
	return &wsClient{send: make(chan []byte, 1)}
}

// offer кладёт снимок в буфер, вытесняя неотправленный.
// Вызывается только под OverlayHub.mu, поэтому производитель один.
func (cl *wsClient) offer(data []byte) {
	for {
		select {
		case cl.send <- data:
			return
		default:
		}
		select {
		case <-cl.send:
		default:
		}
	}
}

// OverlayHub рассылает снимки оверлея подключённым по WebSocket рендерерам
type OverlayHub struct {
	source OverlayReader
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewOverlayHub создает OverlayHub
func NewOverlayHub(source OverlayReader, logger *zap.Logger) *OverlayHub {
	return &OverlayHub{
		source:  source,
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Observe - наблюдатель OverlayController. Не блокируется на медленных клиентах.
func (h *OverlayHub) Observe(snapshot domain.OverlaySource) {
	data, err := json.Marshal(dto.NewOverlayResponse(snapshot))
	if err != nil {
		h.logger.Error("Failed to encode overlay snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		cl.offer(data)
	}
}

// Clients возвращает количество подключённых клиентов
func (h *OverlayHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handle обслуживает одно WebSocket соединение: сразу отправляет текущий снимок,
// затем каждый применённый. Входящие сообщения игнорируются.
func (h *OverlayHub) Handle(conn *websocket.Conn) {
	defer conn.Close()

	cl := newWSClient()
	if err := h.register(cl); err != nil {
		h.logger.Error("Failed to encode overlay snapshot", zap.Error(err))
		return
	}
	defer h.unregister(cl)

	metrics.ActiveWebSockets.Inc()
	defer metrics.ActiveWebSockets.Dec()

	remote := conn.RemoteAddr().String()
	h.logger.Debug("Overlay websocket connected", zap.String("remote", remote))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(conn, cl, done)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	wg.Wait()
	h.logger.Debug("Overlay websocket disconnected", zap.String("remote", remote))
}

// register добавляет клиента и кладёт ему текущий снимок под одной блокировкой,
// чтобы Observe не мог вклиниться с более новым снимком раньше начального
func (h *OverlayHub) register(cl *wsClient) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(dto.NewOverlayResponse(h.source.CurrentOverlay()))
	if err != nil {
		return err
	}
	cl.offer(data)
	h.clients[cl] = struct{}{}
	return nil
}

func (h *OverlayHub) unregister(cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cl)
}

func (h *OverlayHub) writeLoop(conn *websocket.Conn, cl *wsClient, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case data := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			err = conn.WriteMessage(websocket.TextMessage, data)
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			err = conn.WriteMessage(websocket.PingMessage, nil)
		case <-done:
			return
		}
		if err != nil {
			h.logger.Debug("Overlay websocket write failed", zap.Error(err))
			// закрытие разблокирует ReadMessage в Handle
			_ = conn.Close()
			return
		}
	}
}
