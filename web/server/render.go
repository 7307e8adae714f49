package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

const writeWait = 10 * time.Second

var errClientGone = errors.New("client disconnected")

// ClientMessage is a message sent by the browser over the render socket
type ClientMessage struct {
	Type string  `json:"type"` // "move"
	DX   float64 `json:"dx"`   // Offset added to the camera look-from X
	DZ   float64 `json:"dz"`   // Offset added to the camera look-from Z
}

// ServerMessage is a JSON text frame sent to the browser.
// Every "pass" message is immediately followed by a binary frame holding the PNG image.
type ServerMessage struct {
	Type    string          `json:"type"` // "pass", "console", "error"
	Pass    *PassUpdate     `json:"pass,omitempty"`
	Console *ConsoleMessage `json:"console,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// PassUpdate describes the accumulated image after a pass
type PassUpdate struct {
	Frames          int        `json:"frames"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	SamplesPerPixel int        `json:"samplesPerPixel"`
	TotalSamples    int        `json:"totalSamples"`
	AverageSamples  float64    `json:"averageSamples"`
	MeanLuminance   float64    `json:"meanLuminance"`
	PassMs          int64      `json:"passMs"`
	ElapsedMs       int64      `json:"elapsedMs"`
	LookFrom        [3]float64 `json:"lookFrom"`
}

// handleRenderSocket streams progressive frames over a websocket and applies camera moves
func (s *Server) handleRenderSocket(w http.ResponseWriter, r *http.Request) {
	req, err := parseSceneParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request: " + err.Error()})
		return
	}
	sceneObj, err := s.loadScene(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		s.logger.Printf("Websocket upgrade failed: %v\n", err)
		return
	}
	defer conn.Close()

	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan, s.logger)

	config := renderer.DefaultProgressiveConfig()
	config.Seed = req.Seed
	integ := integrator.NewPathTracingIntegrator(sceneObj.SamplingConfig)
	pr := renderer.NewProgressiveRaytracer(sceneObj, config, integ, webLogger)

	webLogger.Printf("Rendering %s at %dx%d, %d samples per frame\n", req.Scene,
		sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height, sceneObj.SamplingConfig.SamplesPerPixel)

	moves := make(chan ClientMessage, 16)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return readClientMessages(ctx, conn, moves)
	})
	g.Go(func() error {
		// Closing the connection unblocks the reader
		defer conn.Close()
		return s.streamFrames(ctx, conn, pr, req.Frames, moves, consoleChan)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errClientGone) {
		s.logger.Printf("Render socket %s closed: %v\n", renderID, err)
	}
}

// readClientMessages forwards client messages until the connection closes
func readClientMessages(ctx context.Context, conn *websocket.Conn, moves chan<- ClientMessage) error {
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClientGone
			}
			return fmt.Errorf("read client message: %w", err)
		}

		select {
		case moves <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

// streamFrames renders passes and sends each one to the client.
// Once maxFrames is reached the loop idles until the camera moves.
func (s *Server) streamFrames(ctx context.Context, conn *websocket.Conn, pr *renderer.ProgressiveRaytracer,
	maxFrames int, moves <-chan ClientMessage, consoleChan <-chan ConsoleMessage) error {

	startTime := time.Now()
	for {
		if maxFrames > 0 && pr.Frames() >= maxFrames {
			select {
			case msg := <-moves:
				applyMove(pr, msg)
			case <-ctx.Done():
				return nil
			}
		}
		drainMoves(pr, moves)

		img, stats, err := pr.RenderPass(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.sendError(conn, err)
			return err
		}

		if err := flushConsole(conn, consoleChan); err != nil {
			return err
		}

		lookFrom := pr.Camera().LookFrom
		update := &PassUpdate{
			Frames:          stats.Frames,
			Width:           img.Bounds().Dx(),
			Height:          img.Bounds().Dy(),
			SamplesPerPixel: stats.SamplesPerPixel,
			TotalSamples:    stats.TotalSamples,
			AverageSamples:  stats.AverageSamples,
			MeanLuminance:   stats.MeanLuminance,
			PassMs:          stats.Duration.Milliseconds(),
			ElapsedMs:       time.Since(startTime).Milliseconds(),
			LookFrom:        [3]float64{lookFrom.X, lookFrom.Y, lookFrom.Z},
		}
		if err := writeMessage(conn, ServerMessage{Type: "pass", Pass: update}); err != nil {
			return err
		}
		if err := writeImage(conn, img); err != nil {
			return err
		}
	}
}

// applyMove offsets the camera look-from in the XZ plane
func applyMove(pr *renderer.ProgressiveRaytracer, msg ClientMessage) {
	if msg.Type != "move" || (msg.DX == 0 && msg.DZ == 0) {
		return
	}
	lookFrom := pr.Camera().LookFrom.Add(core.NewVec3(msg.DX, 0, msg.DZ))
	pr.MoveCamera(lookFrom)
}

// drainMoves applies every queued move without blocking
func drainMoves(pr *renderer.ProgressiveRaytracer, moves <-chan ClientMessage) {
	for {
		select {
		case msg := <-moves:
			applyMove(pr, msg)
		default:
			return
		}
	}
}

// flushConsole sends every pending console message
func flushConsole(conn *websocket.Conn, consoleChan <-chan ConsoleMessage) error {
	for {
		select {
		case msg := <-consoleChan:
			if err := writeMessage(conn, ServerMessage{Type: "console", Console: &msg}); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// sendError reports a render failure to the client, logging it when the client cannot be told
func (s *Server) sendError(conn *websocket.Conn, renderErr error) {
	if err := writeMessage(conn, ServerMessage{Type: "error", Error: renderErr.Error()}); err != nil {
		s.logger.Printf("Failed to report render error %q: %v\n", renderErr, err)
	}
}

func writeMessage(conn *websocket.Conn, msg ServerMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s message: %w", msg.Type, err)
	}
	return nil
}

func writeImage(conn *websocket.Conn, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
