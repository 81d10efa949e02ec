package runner

import (
	"encoding/json"
	"io"
	"os"
)

// JSONHandler writes the report as JSON lines: one object per event, with a
// "type" field of start, notification, step or finish.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler writing to w (stdout when nil).
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (h *JSONHandler) emit(kind string, data any) error {
	return h.Encoder.Encode(envelope{Type: kind, Data: data})
}

func (h *JSONHandler) Start(info RunInfo) error {
	return h.emit("start", info)
}

func (h *JSONHandler) Notification(n Notification) error {
	return h.emit("notification", n)
}

func (h *JSONHandler) StepDone(res StepResult) error {
	return h.emit("step", res)
}

func (h *JSONHandler) Finish(sum Summary) error {
	return h.emit("finish", sum)
}
