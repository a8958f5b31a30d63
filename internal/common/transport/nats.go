// Package transport exposes the question pipeline on a NATS request/reply subject.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/errors"
	"energy-agent/internal/common/logger"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/models"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// QuestionProcessor answers one question.
type QuestionProcessor interface {
	Process(ctx context.Context, question string) (*models.StandardResponse, error)
}

type QuestionRequest struct {
	RequestID string `json:"request_id"`
	Question  string `json:"question"`
}

type QuestionReply struct {
	RequestID    string                   `json:"request_id"`
	Response     *models.StandardResponse `json:"response,omitempty"`
	ErrorCode    string                   `json:"error_code,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
}

type NATSTransport struct {
	conn      *nats.Conn
	sub       *nats.Subscription
	cfg       config.NATSConfig
	processor QuestionProcessor
	logger    logger.Logger
}

func NewNATSTransport(cfg config.NATSConfig, serviceName string, processor QuestionProcessor, log logger.Logger) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name(serviceName),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.NewTransportError("nats", fmt.Errorf("connect %s: %w", cfg.URL, err))
	}

	log.Info("connected to NATS", map[string]interface{}{"url": cfg.URL})
	return newTransport(conn, cfg, processor, log), nil
}

func newTransport(conn *nats.Conn, cfg config.NATSConfig, processor QuestionProcessor, log logger.Logger) *NATSTransport {
	return &NATSTransport{
		conn:      conn,
		cfg:       cfg,
		processor: processor,
		logger:    log.With(map[string]interface{}{"transport": "nats", "subject": cfg.Subject}),
	}
}

// Start subscribes to the question subject in a queue group so several
// agents can share the load.
func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.QueueSubscribe(nt.cfg.Subject, nt.cfg.Queue, nt.handleMessage)
	if err != nil {
		return errors.NewTransportError("nats", fmt.Errorf("subscribe %s: %w", nt.cfg.Subject, err))
	}
	nt.sub = sub
	nt.logger.Info("subscribed", map[string]interface{}{"queue": nt.cfg.Queue})
	return nil
}

func (nt *NATSTransport) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(nt.cfg.Timeout))
	defer cancel()

	if err := msg.Respond(nt.handlePayload(ctx, msg.Data)); err != nil {
		nt.logger.Error("failed to send reply", map[string]interface{}{"error": err.Error()})
	}
}

// handlePayload decodes a request, runs the pipeline and encodes the reply.
func (nt *NATSTransport) handlePayload(ctx context.Context, data []byte) []byte {
	var req QuestionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		nt.logger.Warn("invalid request payload", map[string]interface{}{"error": err.Error()})
		return encodeReply(QuestionReply{
			ErrorCode:    string(errors.ErrCodeInvalidInput),
			ErrorMessage: "Invalid request format",
		})
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	log := nt.logger.With(map[string]interface{}{"requestId": req.RequestID})
	log.Info("processing question", nil)

	resp, err := nt.processor.Process(observability.WithRequestID(ctx, req.RequestID), req.Question)
	if err != nil {
		stdErr := errors.Normalize(err)
		log.Error("question failed", map[string]interface{}{"errorCode": string(stdErr.Code), "error": err.Error()})
		return encodeReply(QuestionReply{
			RequestID:    req.RequestID,
			ErrorCode:    string(stdErr.Code),
			ErrorMessage: stdErr.Message,
		})
	}

	log.Info("question answered", map[string]interface{}{"status": string(resp.Status)})
	return encodeReply(QuestionReply{RequestID: req.RequestID, Response: resp})
}

func encodeReply(r QuestionReply) []byte {
	b, err := json.Marshal(r)
	if err != nil {
		return []byte(`{"error_code":"INTERNAL_ERROR","error_message":"reply encoding failed"}`)
	}
	return b
}

// Close drains the subscription and closes the connection.
func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		_ = nt.sub.Drain()
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.logger.Info("NATS connection closed", nil)
	}
	return nil
}
