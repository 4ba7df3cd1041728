package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fasttrack/internal/logging"
	"fasttrack/internal/usecase"
)

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Options configures the HTTP adapter.
type Options struct {
	Addr string
	// Tick is the default websocket push interval.
	Tick time.Duration
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Server is a primary adapter that exposes the JSON API, the live websocket
// stream and a small status page. It depends on the use case (primary port).
type Server struct {
	usecase usecase.TrackerUseCase
	tick    time.Duration
	engine  *gin.Engine
	server  *http.Server
}

// NewServer creates the HTTP server bound to opts.Addr.
func NewServer(uc usecase.TrackerUseCase, opts Options) *Server {
	tick := opts.Tick
	if tick <= 0 {
		tick = usecase.DefaultTick
	}
	srv := &Server{usecase: uc, tick: tick}
	srv.engine = srv.routes(opts.Metrics)

	// No WriteTimeout: /ws connections are long-lived.
	srv.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           srv.engine,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return srv
}

func (s *Server) routes(metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.GET("/methods", s.handleMethods)
		api.GET("/state", s.handleState)
		api.GET("/history", s.handleHistory)
		api.GET("/progress", s.handleProgress)
		api.PUT("/selection", s.handleSelect)
		api.POST("/fast/start", s.handleStart)
		api.POST("/fast/end", s.handleEnd)
	}

	router.GET("/ws", s.handleWS)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start blocks and serves HTTP traffic. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	logging.L().Infow("http server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.L().Debugw("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>fasttrack</title>
    <style>
        body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; }
        button:hover { background: #0056b3; }
        select { padding: 8px; margin: 5px; }
        progress { width: 100%; height: 20px; }
    </style>
</head>
<body>
    <h1>fasttrack</h1>
    <div>
        <select id="method" onchange="selectMethod()"></select>
        <button onclick="toggle()" id="toggle">Start fast</button>
    </div>
    <div class="info">
        <div id="status">Loading...</div>
        <progress id="bar" max="1" value="0"></progress>
        <div id="timer"></div>
    </div>
    <div id="history"></div>
    <script>
        let fasting = false;

        function hms(s) {
            s = Math.max(0, Math.floor(s));
            const pad = n => String(n).padStart(2, '0');
            return pad(Math.floor(s / 3600)) + ':' + pad(Math.floor(s % 3600 / 60)) + ':' + pad(s % 60);
        }

        function render(st) {
            fasting = st.fasting;
            document.getElementById('method').value = st.selectedMethodId;
            document.getElementById('toggle').textContent = fasting ? 'End fast' : 'Start fast';
            document.getElementById('status').textContent = (fasting ? 'Fasting: ' : 'Not fasting: ') + st.method.name;
            document.getElementById('bar').value = st.progress.ratio;
            document.getElementById('timer').textContent = fasting
                ? 'Elapsed ' + hms(st.progress.clampedElapsedSeconds) + ' / Remaining ' + hms(st.progress.remainingSeconds)
                : 'Target ' + hms(st.progress.totalSeconds);
        }

        async function loadMethods() {
            const res = await fetch('/api/v1/methods');
            const methods = await res.json();
            const sel = document.getElementById('method');
            sel.innerHTML = '';
            for (const m of methods) {
                const opt = document.createElement('option');
                opt.value = m.id;
                opt.textContent = m.name;
                sel.appendChild(opt);
            }
        }

        async function loadHistory() {
            const res = await fetch('/api/v1/history');
            const h = await res.json();
            document.getElementById('history').textContent = 'Completed fasts: ' + h.summary.count;
        }

        async function selectMethod() {
            await fetch('/api/v1/selection', {
                method: 'PUT',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({methodId: document.getElementById('method').value})
            });
        }

        async function toggle() {
            await fetch(fasting ? '/api/v1/fast/end' : '/api/v1/fast/start', {method: 'POST'});
            await loadHistory();
        }

        function connect() {
            const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
            ws.onmessage = ev => {
                const msg = JSON.parse(ev.data);
                if (msg.type === 'status') render(msg.data);
            };
            ws.onclose = () => setTimeout(connect, 3000);
        }

        loadMethods().then(() => { loadHistory(); connect(); });
    </script>
</body>
</html>`
