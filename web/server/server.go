package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Server handles web requests for the progressive path tracer
type Server struct {
	port      int
	sceneDir  string
	staticDir string
	logger    core.Logger
	upgrader  websocket.Upgrader
}

// NewServer creates a new web server. Scenes are resolved against sceneDir for glTF files.
func NewServer(port int, sceneDir string, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	return &Server{
		port:      port,
		sceneDir:  sceneDir,
		staticDir: "web/static/",
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RenderRequest represents the scene parameters of a render or inspect request
type RenderRequest struct {
	Scene           string // Built-in scene ID, "gltf:<name>" or a glTF path
	Width           int    // Image width (0 keeps the scene default)
	Height          int    // Image height (0 keeps the scene default)
	SamplesPerPixel int    // Samples per pixel per frame (0 keeps the scene default)
	MaxDepth        int    // Maximum bounce depth (0 keeps the scene default)
	Frames          int    // Frames to render before idling (0 renders until disconnect)
	Seed            int64  // Base sampler seed
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/ws/render", s.handleRenderSocket)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting web server on http://localhost:%d\n", s.port)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Printf("Shutting down web server\n")
		return httpServer.Shutdown(shutdownCtx)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and any glTF scenes in the scene directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// parseSceneParams parses the scene parameters shared by rendering and inspection
func parseSceneParams(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 8, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 8, 2000); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(values, "spp", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(values, "frames", 0, 1, 100000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 42, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	return req, nil
}

// loadScene builds the requested scene and applies the request overrides
func (s *Server) loadScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := scene.Load(req.Scene, s.sceneDir)
	if err != nil {
		return nil, err
	}
	if req.Width > 0 && req.Height > 0 {
		sceneObj.SetResolution(req.Width, req.Height)
	}
	if req.SamplesPerPixel > 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.SamplesPerPixel
	}
	if req.MaxDepth > 0 {
		sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	}
	return sceneObj, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
