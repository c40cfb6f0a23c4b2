package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ClassifyStreamHandler classifies client-submitted frames over a WebSocket.
// The client sends one message per frame ({"image": base64}) and receives
// the detected hands plus, when a model is trained, the prediction.
type ClassifyStreamHandler struct {
	pipeline *api.Pipeline
}

// NewClassifyStreamHandler creates a new ClassifyStreamHandler.
func NewClassifyStreamHandler(p *api.Pipeline) *ClassifyStreamHandler {
	return &ClassifyStreamHandler{pipeline: p}
}

type classifyFrameRequest struct {
	Image string `json:"image"`
}

type classifyFrameResponse struct {
	Hands      []detector.HandObservation `json:"hands"`
	Prediction *classify.Prediction       `json:"prediction,omitempty"`
	Error      string                     `json:"error,omitempty"`
	Timestamp  int64                      `json:"timestamp"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ClassifyStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req classifyFrameRequest
		if err := conn.ReadJSON(&req); err != nil {
			break
		}

		if err := conn.WriteJSON(h.classifyFrame(req)); err != nil {
			break
		}
	}
}

func (h *ClassifyStreamHandler) classifyFrame(req classifyFrameRequest) classifyFrameResponse {
	resp := classifyFrameResponse{
		Hands:     []detector.HandObservation{},
		Timestamp: time.Now().UnixMilli(),
	}

	hands, err := h.pipeline.DetectImage(req.Image)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	if len(hands) == 0 {
		return resp
	}
	resp.Hands = hands

	obs, err := h.pipeline.Codec.Pick(hands)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	prediction, err := h.pipeline.PredictObservation(obs)
	if err != nil {
		// An untrained model is a normal state for a live stream; raw
		// detections are still useful to the client.
		if !errors.Is(err, classify.ErrNoModel) {
			resp.Error = err.Error()
		}
		return resp
	}

	resp.Prediction = prediction
	return resp
}
